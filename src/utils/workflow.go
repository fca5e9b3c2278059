package utils

import (
	"errors"
	"log"
	"strings"
	"time"

	"pms/src/config"
	"pms/src/db"
	"pms/src/lib"
	"pms/src/models"
	"pms/src/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ownerOpenIndex is the partial unique index on tickets(owner_id) WHERE
// status = 'open', created in boot. The FOR UPDATE guard in IssueQueueToken
// has no row to lock when the owner holds nothing yet, so two simultaneous
// first requests can both pass it; the index makes the loser's insert fail
// instead of committing a second open token.
const ownerOpenIndex = "idx_tickets_owner_open"

const DEFAULT_TOKEN_TYPE = "P"

// today is the UTC calendar boundary the sequencer partitions on.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// IssueQueueToken allocates the next token of the given type for the current
// UTC day. The counter advance and the ticket insert commit together, so a
// rolled-back request never burns a number, and two concurrent callers are
// serialized on the sequence row. The unique index on
// (seq_date, token_type, number) backs the allocator up.
func IssueQueueToken(ownerId uint, tokenType string) (*models.Ticket, error) {
	tokenType = strings.ToUpper(strings.TrimSpace(tokenType))
	if tokenType == "" {
		tokenType = DEFAULT_TOKEN_TYPE
	}
	day := today()

	var ticket models.Ticket
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Ticket
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Ticket{OwnerID: ownerId, Status: types.TOKEN_OPEN}).
			First(&existing).
			Error
		if err == nil {
			return &types.DuplicateActiveTokenError{Code: existing.Code}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var next uint
		if err := tx.Raw(`
			INSERT INTO ticket_sequences (seq_date, token_type, next_number)
			VALUES (?, ?, 1)
			ON CONFLICT (seq_date, token_type)
			DO UPDATE SET next_number = ticket_sequences.next_number + 1
			RETURNING next_number
		`, day, tokenType).Scan(&next).Error; err != nil {
			return err
		}

		ticket = models.Ticket{
			Code:      models.FormatTokenCode(tokenType, next),
			TokenType: tokenType,
			Number:    next,
			SeqDate:   day,
			OwnerID:   ownerId,
			Status:    types.TOKEN_OPEN,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		return recordTrail(tx, "token.issued", ownerId, "tickets", ticket.Code, types.JSONB{
			"type":   ticket.TokenType,
			"number": ticket.Number,
		})
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == ownerOpenIndex {
			var existing models.Ticket
			if lookupErr := db.
				Where(&models.Ticket{OwnerID: ownerId, Status: types.TOKEN_OPEN}).
				First(&existing).
				Error; lookupErr == nil {
				return nil, &types.DuplicateActiveTokenError{Code: existing.Code}
			}
		}
		return nil, err
	}
	go lib.NotifyQueueChanged()
	return &ticket, nil
}

// ListOpenTokens returns today's still-waiting tokens, earliest first. A
// token whose transaction has reached paid is excluded even if its own
// status column has not been reconciled yet.
func ListOpenTokens(page, pageSize int) ([]models.Ticket, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	day := today()
	db := db.GetDb()
	q := db.
		Model(&models.Ticket{}).
		Where("tickets.seq_date = ?", day).
		Where("tickets.status IN ?", []string{types.TOKEN_OPEN, types.TOKEN_IN_PAYMENT}).
		Where(`NOT EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.ticket_code = tickets.code AND t.status = ? AND t.created_at >= ?
		)`, types.TRANSACTION_PAID, day)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tickets []models.Ticket
	err := q.
		Order("tickets.created_at asc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&tickets).
		Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// CloseQueueToken closes the caller's own open token. Not-found, wrong
// owner and already-closed all collapse into the same error so callers
// cannot probe other holders' codes.
func CloseQueueToken(code string, ownerId uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Ticket{}).
			Where(&models.Ticket{Code: code, OwnerID: ownerId, Status: types.TOKEN_OPEN}).
			Update("status", types.TOKEN_CLOSED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrTokenNotFound
		}
		return recordTrail(tx, "token.closed", ownerId, "tickets", code, nil)
	})
	if err != nil {
		return err
	}
	go lib.NotifyQueueChanged()
	return nil
}

// OpenTransaction binds an open token to a new pending transaction and
// moves the token into payment. Reference checks run before any write.
func OpenTransaction(operatorId uint, body *types.OpenTransactionRequestBody) (*models.Transaction, error) {
	startDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.EndDate)
	if err != nil {
		return nil, err
	}

	var txn models.Transaction
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Ticket{Code: body.TicketCode, Status: types.TOKEN_OPEN}).
			Where("seq_date = ?", today()).
			First(&ticket).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		if err := ensureContractor(tx, body.ContractorID); err != nil {
			return err
		}
		if err := ensureStore(tx, body.StoreID); err != nil {
			return err
		}
		passType, err := GetPassType(tx, body.PassTypeID)
		if err != nil {
			return err
		}

		txn = models.Transaction{
			TicketCode:   ticket.Code,
			TicketType:   ticket.TokenType,
			OperatorID:   operatorId,
			Status:       types.TRANSACTION_PENDING,
			ContractorID: body.ContractorID,
			StoreID:      body.StoreID,
			PassTypeID:   body.PassTypeID,
			StartDate:    startDate,
			EndDate:      endDate,
			Position:     body.Position,
			Amount:       passType.Cost,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Ticket{}).
			Where(&models.Ticket{ID: ticket.ID, Status: types.TOKEN_OPEN}).
			Update("status", types.TOKEN_IN_PAYMENT).
			Error; err != nil {
			return err
		}
		return recordTrail(tx, "transaction.opened", operatorId, "transactions", txn.ID.String(), types.JSONB{
			"ticket_code": ticket.Code,
			"amount":      txn.Amount,
		})
	})
	if err != nil {
		return nil, err
	}
	go lib.NotifyQueueChanged()
	return &txn, nil
}

// UpdatePendingTransaction overwrites the editable fields and re-derives the
// amount from the (possibly new) pass type. Status and creation time are
// never touched.
func UpdatePendingTransaction(id uuid.UUID, operatorId uint, body *types.UpdateTransactionRequestBody) (*models.Transaction, error) {
	startDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.EndDate)
	if err != nil {
		return nil, err
	}

	var txn models.Transaction
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&txn).
			Error
		if err != nil {
			return err
		}
		if txn.Status != types.TRANSACTION_PENDING {
			return &types.InvalidStateError{Reason: "only pending transactions may be edited"}
		}

		if err := ensureContractor(tx, body.ContractorID); err != nil {
			return err
		}
		if err := ensureStore(tx, body.StoreID); err != nil {
			return err
		}
		passType, err := GetPassType(tx, body.PassTypeID)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"contractor_id": body.ContractorID,
			"store_id":      body.StoreID,
			"pass_type_id":  body.PassTypeID,
			"start_date":    startDate,
			"end_date":      endDate,
			"position":      body.Position,
			"amount":        passType.Cost,
		}
		if err := tx.Model(&txn).Updates(updates).Error; err != nil {
			return err
		}
		return recordTrail(tx, "transaction.updated", operatorId, "transactions", txn.ID.String(), types.JSONB{
			"amount": passType.Cost,
		})
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ConfirmTransaction marks the transaction paid and issues the pass as one
// unit: the pass row, the status flip and the ticket close commit together
// or not at all.
func ConfirmTransaction(id uuid.UUID, operatorId uint) (*models.Pass, error) {
	var pass models.Pass
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&txn).
			Error
		if err != nil {
			return err
		}
		if txn.Status == types.TRANSACTION_PAID {
			return types.ErrAlreadyPaid
		}
		if txn.Status != types.TRANSACTION_PENDING {
			return &types.InvalidStateError{Reason: "transaction is in an unexpected state: " + txn.Status}
		}

		now := time.Now().UTC()
		pass = IssuePass(&txn, now)
		if err := tx.Create(&pass).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Transaction{}).
			Where("id = ? AND status = ?", id, types.TRANSACTION_PENDING).
			Updates(map[string]any{
				"status":       types.TRANSACTION_PAID,
				"payment_date": now,
				"pass_id":      pass.ID,
			}).Error; err != nil {
			return err
		}
		// Single source of truth: the token is closed in the same commit.
		// The open-token listing keeps the join-based exclusion as backstop.
		if err := tx.
			Model(&models.Ticket{}).
			Where("code = ? AND status IN ?", txn.TicketCode, []string{types.TOKEN_OPEN, types.TOKEN_IN_PAYMENT}).
			Update("status", types.TOKEN_CLOSED).
			Error; err != nil {
			return err
		}
		return recordTrail(tx, "transaction.paid", operatorId, "transactions", txn.ID.String(), types.JSONB{
			"pass_uid": pass.UniqueID,
			"cost":     pass.Cost,
		})
	})
	if err != nil {
		return nil, err
	}
	go lib.NotifyQueueChanged()
	return &pass, nil
}

// IssuePass is pure construction; persistence and linking happen in
// ConfirmTransaction's transactional boundary.
func IssuePass(txn *models.Transaction, now time.Time) models.Pass {
	return models.Pass{
		UniqueID:        uuid.NewString(),
		ContractorID:    txn.ContractorID,
		StoreID:         txn.StoreID,
		PassTypeID:      txn.PassTypeID,
		StartDate:       txn.StartDate,
		EndDate:         txn.EndDate,
		TransactionDate: now,
		Position:        txn.Position,
		Cost:            txn.Amount,
		Status:          types.PASS_ACTIVE,
		TransactionID:   txn.ID,
	}
}

// ClosePass retires an active pass. Irreversible; the reason is required.
func ClosePass(id uint, operatorId uint, reason string) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var pass models.Pass
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Pass{ID: id}).
			First(&pass).
			Error
		if err != nil {
			return err
		}
		if pass.Status != types.PASS_ACTIVE {
			return types.ErrAlreadyClosed
		}
		now := time.Now().UTC()
		if err := tx.
			Model(&pass).
			Updates(map[string]any{
				"status":       types.PASS_CLOSED,
				"close_reason": reason,
				"closed_at":    now,
			}).Error; err != nil {
			return err
		}
		return recordTrail(tx, "pass.closed", operatorId, "passes", pass.UniqueID, types.JSONB{
			"reason": reason,
		})
	})
}

// CloseStaleTokens sweeps open tokens older than the given age. Wired as an
// optional scheduler job; operators normally close abandoned tokens by hand.
func CloseStaleTokens(age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	var affected int64
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Ticket{}).
			Where("status = ? AND created_at < ?", types.TOKEN_OPEN, cutoff).
			Update("status", types.TOKEN_CLOSED)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		log.Printf("Closed %d stale queue tokens\n", affected)
		go lib.NotifyQueueChanged()
	}
	return affected, nil
}

func recordTrail(tx *gorm.DB, trailType string, initiator uint, group, entityId string, detail types.JSONB) error {
	return tx.Create(&models.TrailLog{
		Type:      trailType,
		Initiator: initiator,
		Group:     group,
		EntityID:  entityId,
		Detail:    detail,
	}).Error
}
