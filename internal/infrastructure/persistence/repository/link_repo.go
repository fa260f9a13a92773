package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/pkg/database"
)

// relation maps a RelationKind onto its join table. ownerCol is the side a
// Reconcile call owns; linkedCol holds the desired IDs. Reversed kinds share
// a table with the forward kind, with the columns swapped.
type relation struct {
	table     string
	ownerCol  string
	linkedCol string
}

var relations = map[port.RelationKind]relation{
	port.RelScopeProgramme:    {"scope_programme_links", "scope_item_id", "programme_item_id"},
	port.RelProgrammeScope:    {"scope_programme_links", "programme_item_id", "scope_item_id"},
	port.RelEvidenceScope:     {"evidence_scope_links", "evidence_id", "scope_item_id"},
	port.RelScopeEvidence:     {"evidence_scope_links", "scope_item_id", "evidence_id"},
	port.RelEvidenceProgramme: {"evidence_programme_links", "evidence_id", "programme_item_id"},
	port.RelProgrammeEvidence: {"evidence_programme_links", "programme_item_id", "evidence_id"},
	port.RelEvidenceClaim:     {"evidence_claim_links", "evidence_id", "payment_claim_id"},
	port.RelClaimEvidence:     {"evidence_claim_links", "payment_claim_id", "evidence_id"},
}

// LinkRepository maintains the many-to-many join tables
type LinkRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *database.DB, logger *zap.Logger) *LinkRepository {
	return &LinkRepository{db: db, logger: logger}
}

// Reconcile replaces the owner's link set with exactly desired: stale pairs
// are deleted, missing pairs inserted, and pairs present in both are left
// untouched so their created_at stamps survive. Duplicate desired IDs
// collapse to one link. Callers run this inside a transaction together with
// the owning entity's update.
func (r *LinkRepository) Reconcile(ctx context.Context, kind port.RelationKind, ownerID string, desired []string) error {
	rel, ok := relations[kind]
	if !ok {
		return fmt.Errorf("unknown relation kind %q", kind)
	}

	existing, err := r.LinkedIDs(ctx, kind, ownerID)
	if err != nil {
		return err
	}
	existingSet := make(map[string]bool, len(existing))
	for _, id := range existing {
		existingSet[id] = true
	}

	desiredSet := make(map[string]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	q := dbtx(ctx, r.db)
	now := time.Now().UTC()

	for _, id := range existing {
		if desiredSet[id] {
			continue
		}
		del := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND %s = ?`,
			rel.table, rel.ownerCol, rel.linkedCol)
		if _, err := q.ExecContext(ctx, del, ownerID, id); err != nil {
			return fmt.Errorf("failed to remove %s link: %w", kind, err)
		}
	}

	for id := range desiredSet {
		if existingSet[id] {
			continue
		}
		ins := fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s, %s, created_at) VALUES (?, ?, ?)`,
			rel.table, rel.ownerCol, rel.linkedCol)
		if _, err := q.ExecContext(ctx, ins, ownerID, id, now); err != nil {
			return fmt.Errorf("failed to add %s link: %w", kind, err)
		}
	}
	return nil
}

// LinkedIDs returns the IDs linked to ownerID under kind, in link creation
// order
func (r *LinkRepository) LinkedIDs(ctx context.Context, kind port.RelationKind, ownerID string) ([]string, error) {
	rel, ok := relations[kind]
	if !ok {
		return nil, fmt.Errorf("unknown relation kind %q", kind)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY created_at ASC, %s ASC`,
		rel.linkedCol, rel.table, rel.ownerCol, rel.linkedCol)
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s links: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clear removes every link owned by ownerID under kind, used when the owning
// entity is deleted
func (r *LinkRepository) Clear(ctx context.Context, kind port.RelationKind, ownerID string) error {
	rel, ok := relations[kind]
	if !ok {
		return fmt.Errorf("unknown relation kind %q", kind)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, rel.table, rel.ownerCol)
	if _, err := dbtx(ctx, r.db).ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to clear %s links: %w", kind, err)
	}
	return nil
}
