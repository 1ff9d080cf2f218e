package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"communityhub/internal/domain"
)

type communityMemberRepository struct {
	DB *sql.DB
}

func NewCommunityMemberRepository(db *sql.DB) domain.CommunityMemberRepository {
	return &communityMemberRepository{DB: db}
}

func (r *communityMemberRepository) Add(ctx context.Context, communityID, userID, role string) error {
	query := `
		INSERT INTO community_members (community_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.DB.ExecContext(ctx, query, communityID, userID, role)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *communityMemberRepository) Get(ctx context.Context, communityID, userID string) (*domain.CommunityMember, error) {
	query := `
		SELECT m.community_id, m.user_id, m.role, u.name, u.last_name, u.email, m.joined_at
		FROM community_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.community_id = $1 AND m.user_id = $2
	`
	m := &domain.CommunityMember{}
	var name, lastName sql.NullString
	err := r.DB.QueryRowContext(ctx, query, communityID, userID).
		Scan(&m.CommunityID, &m.UserID, &m.Role, &name, &lastName, &m.Email, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.Name = name.String
	m.LastName = lastName.String
	return m, nil
}

func (r *communityMemberRepository) ListByCommunityID(ctx context.Context, communityID string) ([]*domain.CommunityMember, error) {
	query := `
		SELECT m.community_id, m.user_id, m.role, u.name, u.last_name, u.email, m.joined_at
		FROM community_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.community_id = $1
		ORDER BY m.joined_at
	`
	rows, err := r.DB.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.CommunityMember, 0)
	for rows.Next() {
		m := &domain.CommunityMember{}
		var name, lastName sql.NullString
		if err := rows.Scan(&m.CommunityID, &m.UserID, &m.Role, &name, &lastName, &m.Email, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Name = name.String
		m.LastName = lastName.String
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *communityMemberRepository) Remove(ctx context.Context, communityID, userID string) error {
	query := `DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, communityID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
