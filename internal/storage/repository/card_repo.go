// Package repository implements the persistence interfaces over SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

// CardRepository provides read/write access to the card catalog and its
// precomputed metrics. It satisfies cards.Store and the metrics builder's
// store interface.
type CardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a card repository over db.
func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `c.card_id, c.name, c.class_id, c.cost, c.card_type, c.rarity,
	c.attack, c.defense, c.skill_text, c.evo_skill_text, c.roles, c.keywords, c.is_token,
	m.base_rating, m.stat_efficiency, m.role_score, m.keyword_score, m.rarity_bonus, m.impact_score`

const cardJoin = `FROM cards c LEFT JOIN card_metrics m ON m.card_id = c.card_id`

// GetCard returns the card with the given id, or (nil, nil) when the id
// is unknown.
func (r *CardRepository) GetCard(ctx context.Context, cardID string) (*cards.Card, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+cardColumns+" "+cardJoin+" WHERE c.card_id = ?", cardID)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardID, err)
	}
	return card, nil
}

// GetCards returns the cards for the given ids, skipping unknown ones.
func (r *CardRepository) GetCards(ctx context.Context, cardIDs []string) ([]*cards.Card, error) {
	result := make([]*cards.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, err := r.GetCard(ctx, id)
		if err != nil {
			return nil, err
		}
		if card != nil {
			result = append(result, card)
		}
	}
	return result, nil
}

// SearchByName returns non-token cards whose name starts with prefix,
// shortest names first so an exact match sorts ahead of longer variants.
func (r *CardRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]*cards.Card, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := strings.ReplaceAll(strings.ReplaceAll(prefix, "%", `\%`), "_", `\_`) + "%"
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+cardColumns+" "+cardJoin+
			` WHERE c.name LIKE ? ESCAPE '\' AND c.is_token = 0
			ORDER BY LENGTH(c.name), c.name LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// ListAll returns every card in the catalog.
func (r *CardRepository) ListAll(ctx context.Context) ([]*cards.Card, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+cardColumns+" "+cardJoin+" ORDER BY c.card_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// UpsertCard inserts or replaces a catalog row.
func (r *CardRepository) UpsertCard(ctx context.Context, card *cards.Card) error {
	roles, err := json.Marshal(card.Roles)
	if err != nil {
		return fmt.Errorf("failed to marshal roles for %s: %w", card.ID, err)
	}
	keywords, err := json.Marshal(card.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords for %s: %w", card.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cards (card_id, name, class_id, cost, card_type, rarity,
			attack, defense, skill_text, evo_skill_text, roles, keywords, is_token)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			name = excluded.name,
			class_id = excluded.class_id,
			cost = excluded.cost,
			card_type = excluded.card_type,
			rarity = excluded.rarity,
			attack = excluded.attack,
			defense = excluded.defense,
			skill_text = excluded.skill_text,
			evo_skill_text = excluded.evo_skill_text,
			roles = excluded.roles,
			keywords = excluded.keywords,
			is_token = excluded.is_token
	`, card.ID, card.Name, int(card.Craft), card.Cost, string(card.Type), string(card.Rarity),
		card.Attack, card.Defense, card.SkillText, card.EvolvedSkillText,
		string(roles), string(keywords), boolToInt(card.IsToken))
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.ID, err)
	}
	return nil
}

// SaveMetrics upserts the metrics row for a card.
func (r *CardRepository) SaveMetrics(ctx context.Context, cardID string, m cards.Metrics) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO card_metrics (card_id, base_rating, stat_efficiency, role_score,
			keyword_score, rarity_bonus, impact_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(card_id) DO UPDATE SET
			base_rating = excluded.base_rating,
			stat_efficiency = excluded.stat_efficiency,
			role_score = excluded.role_score,
			keyword_score = excluded.keyword_score,
			rarity_bonus = excluded.rarity_bonus,
			impact_score = excluded.impact_score,
			updated_at = CURRENT_TIMESTAMP
	`, cardID, m.BaseRating, m.StatEfficiency, m.RoleScore, m.KeywordScore, m.RarityBonus, m.ImpactScore)
	if err != nil {
		return fmt.Errorf("failed to save metrics for %s: %w", cardID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*cards.Card, error) {
	var (
		card             cards.Card
		classID          int
		cardType, rarity sql.NullString
		attack, defense  sql.NullInt64
		skill, evoSkill  sql.NullString
		roles, keywords  sql.NullString
		isToken          int
		baseRating       sql.NullFloat64
		statEfficiency   sql.NullFloat64
		roleScore        sql.NullFloat64
		keywordScore     sql.NullFloat64
		rarityBonus      sql.NullFloat64
		impactScore      sql.NullFloat64
	)

	err := row.Scan(&card.ID, &card.Name, &classID, &card.Cost, &cardType, &rarity,
		&attack, &defense, &skill, &evoSkill, &roles, &keywords, &isToken,
		&baseRating, &statEfficiency, &roleScore, &keywordScore, &rarityBonus, &impactScore)
	if err != nil {
		return nil, err
	}

	card.Craft = cards.CraftID(classID)
	card.Type = cards.CardType(cardType.String)
	card.Rarity = cards.Rarity(rarity.String)
	card.SkillText = skill.String
	card.EvolvedSkillText = evoSkill.String
	card.IsToken = isToken != 0
	if attack.Valid {
		v := int(attack.Int64)
		card.Attack = &v
	}
	if defense.Valid {
		v := int(defense.Int64)
		card.Defense = &v
	}
	if roles.Valid && roles.String != "" {
		if err := json.Unmarshal([]byte(roles.String), &card.Roles); err != nil {
			return nil, fmt.Errorf("malformed roles for card %s: %w", card.ID, err)
		}
	}
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &card.Keywords); err != nil {
			return nil, fmt.Errorf("malformed keywords for card %s: %w", card.ID, err)
		}
	}
	if baseRating.Valid {
		card.Metrics = &cards.Metrics{
			BaseRating:     baseRating.Float64,
			StatEfficiency: statEfficiency.Float64,
			RoleScore:      roleScore.Float64,
			KeywordScore:   keywordScore.Float64,
			RarityBonus:    rarityBonus.Float64,
			ImpactScore:    impactScore.Float64,
		}
	}
	return &card, nil
}

func collectCards(rows *sql.Rows) ([]*cards.Card, error) {
	var result []*cards.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		result = append(result, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
