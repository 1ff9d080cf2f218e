package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSentReminderRepository_Claim(t *testing.T) {
	ctx := context.Background()
	sentAt := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantClaimed bool
		wantErr     bool
	}{
		{
			name: "claimed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO sent_reminders`).
					WithArgs("reg-1", "1-hour", sentAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantClaimed: true,
		},
		{
			name: "already claimed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO sent_reminders`).
					WithArgs("reg-1", "1-hour", sentAt).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantClaimed: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO sent_reminders`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewSentReminderRepository(db)
			claimed, err := repo.Claim(ctx, "reg-1", "1-hour", sentAt)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantClaimed, claimed)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSentReminderRepository_Release(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM sent_reminders`).
					WithArgs("reg-1", "1-hour").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM sent_reminders`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewSentReminderRepository(db)
			err = repo.Release(ctx, "reg-1", "1-hour")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
