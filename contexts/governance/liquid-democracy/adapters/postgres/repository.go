package postgresadapter

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
	domainerrors "liquido/contexts/governance/liquid-democracy/domain/errors"
	"liquido/contexts/governance/liquid-democracy/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
	// locking is set inside Atomically so point reads take row locks.
	locking bool
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// maxSerializableAttempts bounds how often a unit aborted with SQLSTATE
// 40001/40P01 is re-run before ErrConflict is returned.
const maxSerializableAttempts = 5

// Atomically runs fn in one SERIALIZABLE transaction. A unit aborted by a
// serialization failure is re-run from the start, so a racing consumer of
// the same voter token sees the token gone and fails with ErrInvalidToken.
// Failures that persist, and unique violations, surface as ErrConflict.
func (r *Repository) Atomically(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	err := retrySerializable(ctx, maxSerializableAttempts, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, &Repository{db: tx, logger: r.logger, locking: true})
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	})
	if err != nil && (isSerializationFailure(err) || isUniqueViolation(err)) {
		r.logger.Warn("liquid democracy transaction conflict",
			"event", "liquid_repo_transaction_conflict",
			"module", "governance/liquid-democracy",
			"layer", "adapter",
			"error", err.Error(),
		)
		return domainerrors.ErrConflict
	}
	return err
}

func retrySerializable(ctx context.Context, attempts int, run func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = run()
		if err == nil || !isSerializationFailure(err) || attempt >= attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 5 * time.Millisecond):
		}
	}
}

func (r *Repository) GetRightToVote(ctx context.Context, rightToVoteID string) (entities.RightToVote, bool, error) {
	var row rightToVoteModel
	err := r.read(ctx).
		Where("id = ?", strings.TrimSpace(rightToVoteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RightToVote{}, false, nil
		}
		return entities.RightToVote{}, false, r.logError("liquid_repo_get_right_to_vote_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveRightToVote(ctx context.Context, rightToVote entities.RightToVote) error {
	row := rightToVoteModelFromEntity(rightToVote)
	if row.ID == "" {
		return domainerrors.ErrInvalidInput
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"delegated_to":    row.DelegatedTo,
			"public_proxy_id": row.PublicProxyID,
			"expires_at":      row.ExpiresAt,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("liquid_repo_save_right_to_vote_failed", create.Error)
	}
	return nil
}

func (r *Repository) ListDelegees(ctx context.Context, rightToVoteID string) ([]entities.RightToVote, error) {
	var rows []rightToVoteModel
	if err := r.db.WithContext(ctx).
		Where("delegated_to = ?", strings.TrimSpace(rightToVoteID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("liquid_repo_list_delegees_failed", err)
	}
	items := make([]entities.RightToVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetDelegation(ctx context.Context, delegationID string) (entities.Delegation, bool, error) {
	var row delegationModel
	err := r.read(ctx).
		Where("id = ?", strings.TrimSpace(delegationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Delegation{}, false, nil
		}
		return entities.Delegation{}, false, r.logError("liquid_repo_get_delegation_failed", err,
			"delegation_id", strings.TrimSpace(delegationID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetDelegationFrom(ctx context.Context, fromUserID string) (entities.Delegation, bool, error) {
	var row delegationModel
	err := r.read(ctx).
		Where("from_user_id = ?", strings.TrimSpace(fromUserID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Delegation{}, false, nil
		}
		return entities.Delegation{}, false, r.logError("liquid_repo_get_delegation_from_failed", err,
			"user_id", strings.TrimSpace(fromUserID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveDelegation(ctx context.Context, delegation entities.Delegation) error {
	row := delegationModelFromEntity(delegation)
	if row.ID == "" || row.FromUserID == "" {
		return domainerrors.ErrInvalidInput
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"to_proxy_id":               row.ToProxyID,
			"requested_delegation_from": row.RequestedDelegationFrom,
			"requested_at":              row.RequestedAt,
			"updated_at":                row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("liquid_repo_save_delegation_failed", create.Error,
			"delegation_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) DeleteDelegationFrom(ctx context.Context, fromUserID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("from_user_id = ?", strings.TrimSpace(fromUserID)).
		Delete(&delegationModel{})
	if result.Error != nil {
		return false, r.logError("liquid_repo_delete_delegation_failed", result.Error,
			"user_id", strings.TrimSpace(fromUserID),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListDelegationRequests(ctx context.Context, toProxyID string) ([]entities.Delegation, error) {
	var rows []delegationModel
	if err := r.db.WithContext(ctx).
		Where("to_proxy_id = ?", strings.TrimSpace(toProxyID)).
		Where("requested_delegation_from IS NOT NULL").
		Order("requested_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("liquid_repo_list_delegation_requests_failed", err,
			"proxy_id", strings.TrimSpace(toProxyID),
		)
	}
	items := make([]entities.Delegation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveVoterToken(ctx context.Context, token entities.VoterToken) error {
	row := voterTokenModel{
		HashedVoterToken: strings.TrimSpace(token.HashedVoterToken),
		PollID:           strings.TrimSpace(token.PollID),
		RightToVoteID:    strings.TrimSpace(token.RightToVoteID),
		ExpiresAt:        token.ExpiresAt.UTC(),
		CreatedAt:        token.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("liquid_repo_save_voter_token_failed", err, "poll_id", row.PollID)
	}
	return nil
}

func (r *Repository) GetVoterToken(ctx context.Context, hashedVoterToken string) (entities.VoterToken, bool, error) {
	var row voterTokenModel
	err := r.db.WithContext(ctx).
		Where("hashed_voter_token = ?", strings.TrimSpace(hashedVoterToken)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterToken{}, false, nil
		}
		return entities.VoterToken{}, false, r.logError("liquid_repo_get_voter_token_failed", err)
	}
	return row.toEntity(), true, nil
}

// ConsumeVoterToken is a single DELETE ... RETURNING, so two concurrent
// consumers of one token cannot both receive the row.
func (r *Repository) ConsumeVoterToken(ctx context.Context, hashedVoterToken string, now time.Time) (entities.VoterToken, bool, error) {
	var rows []voterTokenModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("hashed_voter_token = ?", strings.TrimSpace(hashedVoterToken)).
		Delete(&rows).
		Error
	if err != nil {
		return entities.VoterToken{}, false, r.logError("liquid_repo_consume_voter_token_failed", err)
	}
	if len(rows) == 0 {
		return entities.VoterToken{}, false, nil
	}
	token := rows[0].toEntity()
	if token.IsExpired(now) {
		return entities.VoterToken{}, false, nil
	}
	return token, true, nil
}

func (r *Repository) DeleteVoterToken(ctx context.Context, hashedVoterToken string) error {
	if err := r.db.WithContext(ctx).
		Where("hashed_voter_token = ?", strings.TrimSpace(hashedVoterToken)).
		Delete(&voterTokenModel{}).Error; err != nil {
		return r.logError("liquid_repo_delete_voter_token_failed", err)
	}
	return nil
}

func (r *Repository) DeleteExpiredVoterTokens(ctx context.Context, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&voterTokenModel{})
	if result.Error != nil {
		return 0, r.logError("liquid_repo_delete_expired_voter_tokens_failed", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) GetBallot(ctx context.Context, pollID string, rightToVoteID string) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.read(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("right_to_vote_id = ?", strings.TrimSpace(rightToVoteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("liquid_repo_get_ballot_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetBallotByChecksum(ctx context.Context, pollID string, checksum string) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("checksum = ?", strings.TrimSpace(checksum)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("liquid_repo_get_ballot_by_checksum_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	return row.toEntity(), true, nil
}

// SaveBallot upserts on (poll_id, right_to_vote_id), the uniqueness that keeps
// one ballot per voter and poll.
func (r *Repository) SaveBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModelFromEntity(ballot)
	if row.ID == "" || row.PollID == "" || row.RightToVoteID == "" {
		return domainerrors.ErrInvalidInput
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "poll_id"}, {Name: "right_to_vote_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote_order", "level", "checksum", "updated_at"}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("liquid_repo_save_ballot_failed", create.Error,
			"poll_id", row.PollID,
			"level", row.Level,
		)
	}
	return nil
}

func (r *Repository) ListBallotsByPoll(ctx context.Context, pollID string) ([]entities.Ballot, error) {
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("liquid_repo_list_ballots_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	pollID = strings.TrimSpace(pollID)
	var row pollModel
	err := r.read(ctx).
		Where("id = ?", pollID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("liquid_repo_get_poll_failed", err, "poll_id", pollID)
	}
	var proposals []proposalModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("id ASC").
		Find(&proposals).Error; err != nil {
		return entities.Poll{}, r.logError("liquid_repo_list_proposals_failed", err, "poll_id", pollID)
	}
	return row.toEntity(proposals), nil
}

func (r *Repository) SavePoll(ctx context.Context, poll entities.Poll) error {
	row := pollModelFromEntity(poll)
	if row.ID == "" {
		return domainerrors.ErrInvalidInput
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"status",
			"voting_started_at",
			"voting_ended_at",
			"duel_matrix",
			"winner_proposal_id",
			"updated_at",
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("liquid_repo_save_poll_failed", create.Error, "poll_id", row.ID)
	}
	for _, proposal := range poll.Proposals {
		proposalRow := proposalModel{
			ID:     strings.TrimSpace(proposal.ProposalID),
			PollID: row.ID,
			Title:  strings.TrimSpace(proposal.Title),
			Status: string(proposal.Status),
		}
		upsert := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"title":  proposalRow.Title,
				"status": proposalRow.Status,
			}),
		}).Create(&proposalRow)
		if upsert.Error != nil {
			return r.logError("liquid_repo_save_proposal_failed", upsert.Error,
				"poll_id", row.ID,
				"proposal_id", proposalRow.ID,
			)
		}
	}
	return nil
}

func (r *Repository) read(ctx context.Context) *gorm.DB {
	tx := r.db.WithContext(ctx)
	if r.locking {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/liquid-democracy",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("liquid democracy repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.Transactor = (*Repository)(nil)
