package postgres

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"console/config"
)

func TestRedactSQL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   `INSERT INTO "sys_user_credentials" ("domain","user_id","password_hash") VALUES ('system',1,'$2a$10$abc')`,
			want: `INSERT INTO "sys_user_credentials" [redacted]`,
		},
		{
			in:   `SELECT * FROM "sys_sessions" WHERE token_hash = 'deadbeef'`,
			want: `SELECT * FROM "sys_sessions" [redacted]`,
		},
		{
			in:   `SELECT * FROM "sys_users" WHERE domain = 'system'`,
			want: `SELECT * FROM "sys_users" WHERE domain = 'system'`,
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, redactSQL(tt.in))
	}
}

func TestGormSlogLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := newGormSlogLogger(base, &config.Config{})

	sqlFn := func() (string, int64) {
		return `UPDATE "sys_user_credentials" SET password_hash = 'secret'`, 1
	}

	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query failed")
	assert.NotContains(t, buf.String(), "secret")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	assert.Empty(t, buf.String())
}
