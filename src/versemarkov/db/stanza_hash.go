package db

import (
	"context"
	"crypto/md5"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jonbodner/proteus"
)

// ErrDuplicate is returned by Archive when an identical stanza is already stored.
var ErrDuplicate = errors.New("stanza already archived")

var StanzaHashDAO StanzaHashDaoImpl

type StanzaHashDaoImpl struct {
	Upsert    func(ctx context.Context, e proteus.ContextExecutor, stanzaID string, md5Sum []byte) (int64, error) `proq:"q:upsert" prop:"stanzaID,md5Sum"`
	FindByMD5 func(ctx context.Context, e proteus.ContextQuerier, md5Sum []byte) (string, error)                  `proq:"q:findByMD5" prop:"md5Sum"`
}

func init() {
	m := proteus.MapMapper{
		"upsert": `INSERT INTO stanza_hash (stanza_id, md5_sum) VALUES (:stanzaID:, :md5Sum:)
				   ON CONFLICT (stanza_id)
				   DO UPDATE SET md5_sum = excluded.md5_sum`,
		"findByMD5": `SELECT stanza_id FROM stanza_hash WHERE md5_sum = :md5Sum:`,
	}
	err := proteus.ShouldBuild(context.Background(), &StanzaHashDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}

// DuplicateHash hashes a stanza ignoring case, punctuation and anything but letters, spaces
// and line breaks.
func DuplicateHash(content string) [md5.Size]byte {
	return md5.Sum([]byte(strings.ToUpper(hashStrip(content))))
}

func hashStrip(s string) string {
	var result strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || b == ' ' || b == '\n' {
			result.WriteByte(b)
		}
	}
	return result.String()
}

// Archive stores s with its duplicate hash in a single transaction, assigning a new StanzaID when
// s has none. A stanza whose hash is already known is rejected with ErrDuplicate and not stored.
func Archive(ctx context.Context, sqlDB *sql.DB, s Stanza) (Stanza, error) {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return s, fmt.Errorf("could not begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	hash := DuplicateHash(s.Content)
	existing, err := StanzaHashDAO.FindByMD5(ctx, tx, hash[:])
	if err != nil {
		return s, fmt.Errorf("could not look up stanza hash: %w", err)
	}
	if existing != "" {
		return s, fmt.Errorf("%w as %s", ErrDuplicate, existing)
	}
	if s.StanzaID == "" {
		s.StanzaID = uuid.New().String()
	}
	if _, err := StanzaDAO.Upsert(ctx, tx, s); err != nil {
		return s, fmt.Errorf("could not store stanza: %w", err)
	}
	if _, err := StanzaHashDAO.Upsert(ctx, tx, s.StanzaID, hash[:]); err != nil {
		log.Println("could not store stanza hash in database,", err)
		return s, fmt.Errorf("error while storing stanza hash: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return s, fmt.Errorf("could not commit archived stanza: %w", err)
	}
	return s, nil
}

// UpdateHashes stores the duplicate hash of every archived stanza that has none, returning how
// many were added. It's intended to be run on a separate goroutine on startup.
func UpdateHashes(ctx context.Context, sqlDB *sql.DB) (int, error) {
	rows, err := sqlDB.QueryContext(ctx, `SELECT s.stanza_id, s.content FROM stanza s
		LEFT JOIN stanza_hash h ON h.stanza_id = s.stanza_id
		WHERE h.stanza_id IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("could not list unhashed stanzas: %w", err)
	}
	type unhashed struct {
		stanzaID string
		content  string
	}
	var pending []unhashed
	for rows.Next() {
		var u unhashed
		if err := rows.Scan(&u.stanzaID, &u.content); err != nil {
			rows.Close()
			return 0, fmt.Errorf("could not scan stanza: %w", err)
		}
		pending = append(pending, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	insertCount := 0
	for _, u := range pending {
		hash := DuplicateHash(u.content)
		count, err := StanzaHashDAO.Upsert(ctx, sqlDB, u.stanzaID, hash[:])
		if err != nil {
			return insertCount, fmt.Errorf("could not store hash for stanza %s: %w", u.stanzaID, err)
		}
		if count != 0 {
			insertCount++
		}
	}
	return insertCount, nil
}
