package db_test

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/kalexmills/verse-hammer/src/versemarkov/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var DB *sql.DB

func TestMain(m *testing.M) {
	dbPath := filepath.Join(os.TempDir(), "verse-hammer-test.db")

	// delete any existing database
	err := os.Remove(dbPath)
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("could not remove database file %s: %v", dbPath, err)
	}

	DB, err = db.Open(dbPath)
	if err != nil {
		log.Fatalf("could not open database %s: %v", dbPath, err)
	}

	code := m.Run()

	DB.Close()
	os.Remove(dbPath)
	os.Exit(code)
}

func TestBootstrapDB_Idempotent(t *testing.T) {
	assert.NoError(t, db.BootstrapDB(DB))
}

func TestStanzaDAO_Upsert(t *testing.T) {
	ctx := context.Background()

	rows, err := db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"s-1", 1, 1, "common", "not really a stanza"})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	stanza, err := db.StanzaDAO.FindByID(ctx, DB, "s-1")
	assert.NoError(t, err)
	assert.EqualValues(t, "not really a stanza", stanza.Content)
	assert.EqualValues(t, "common", stanza.Meter)

	_, err = db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"s-1", 1, 1, "long", "updated stanza"})
	assert.NoError(t, err)

	stanza, err = db.StanzaDAO.FindByID(ctx, DB, "s-1")
	assert.NoError(t, err)
	assert.EqualValues(t, "updated stanza", stanza.Content)
	assert.EqualValues(t, "common", stanza.Meter)
}

func TestStanzaDAO_Random(t *testing.T) {
	ctx := context.Background()

	db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"r-2", 10, 1, "common", "not really a stanza"})
	db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"r-3", 10, 1, "common", "also not a stanza"})
	db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"r-4", 10, 1, "common", "not even a stanza"})

	// should not hit the below rows since filtering by guild_id
	db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"r-6", 20, 2, "common", "not even a stanza"})
	db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"r-7", 20, 2, "common", "not even a stanza"})

	for i := 0; i < 10; i++ {
		result, err := db.StanzaDAO.Random(ctx, DB, 10)
		assert.NoError(t, err)
		assert.Contains(t, []string{"r-2", "r-3", "r-4"}, result.StanzaID)
		assert.Equal(t, 10, result.GuildID)
		assert.Equal(t, 1, result.ChannelID)
	}

	count, err := db.StanzaDAO.Count(ctx, DB, 10)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, count)

	result, err := db.StanzaDAO.Random(ctx, DB, 123) // should be empty
	assert.NoError(t, err)
	assert.Empty(t, result.Content)
}

func TestGuildConfigDAO_Upsert(t *testing.T) {
	ctx := context.Background()

	_, err := db.GuildConfigDAO.Upsert(ctx, DB, db.GuildConfig{1, 5, "common"})
	assert.NoError(t, err)

	conf, err := db.GuildConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.GuildConfig{1, 5, "common"}, conf)

	_, err = db.GuildConfigDAO.Upsert(ctx, DB, db.GuildConfig{1, 4, "long"})
	assert.NoError(t, err)

	conf, err = db.GuildConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.GuildConfig{1, 4, "long"}, conf)
}

func TestChannelConfigDAO_Upsert(t *testing.T) {
	ctx := context.Background()

	_, err := db.ChannelConfigDAO.Upsert(ctx, DB, 1, 6)
	assert.NoError(t, err)

	conf, err := db.ChannelConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.ChannelConfig{1, 6}, conf)

	_, err = db.ChannelConfigDAO.Upsert(ctx, DB, 1, 2)
	assert.NoError(t, err)

	conf, err = db.ChannelConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.ChannelConfig{1, 2}, conf)

	_, err = db.ChannelConfigDAO.FindByID(ctx, DB, 2)
	assert.NoError(t, err)
}

func TestLookupFlags(t *testing.T) {
	ctx := context.Background()

	_, err := db.ChannelConfigDAO.Upsert(ctx, DB, 3, 3)
	assert.NoError(t, err)
	_, err = db.GuildConfigDAO.Upsert(ctx, DB, db.GuildConfig{GuildID: 2, Flags: 4})
	assert.NoError(t, err)

	flags, err := db.LookupFlags(ctx, DB, 2, 3)
	assert.NoError(t, err)

	assert.EqualValues(t, 7, flags)
	assert.True(t, flags.ServeOnMention())
	assert.True(t, flags.ArchiveStanzas())
	assert.True(t, flags.ServeArchived())
	assert.Equal(t, "ServeOnMention, ArchiveStanzas, ServeArchived", flags.String())

	flags, err = db.LookupFlags(ctx, DB, 99, 99)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, flags)
	assert.Equal(t, "none", flags.String())
}

func TestStanzaHashDAO(t *testing.T) {
	ctx := context.Background()

	stanzaHash := [16]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	otherHash := [16]byte{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	_, err := db.StanzaHashDAO.Upsert(ctx, DB, "h-143", stanzaHash[:])
	assert.NoError(t, err)

	sid, err := db.StanzaHashDAO.FindByMD5(ctx, DB, stanzaHash[:])
	assert.NoError(t, err)
	assert.Equal(t, "h-143", sid)

	sid, err = db.StanzaHashDAO.FindByMD5(ctx, DB, otherHash[:])
	assert.NoError(t, err)
	assert.Empty(t, sid)
}

func TestArchive(t *testing.T) {
	ctx := context.Background()

	stored, err := db.Archive(ctx, DB, db.Stanza{GuildID: 5, Meter: "short", Content: "Come, we that love the Lord,\nAnd let our joys be known"})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.StanzaID)

	found, err := db.StanzaDAO.FindByID(ctx, DB, stored.StanzaID)
	require.NoError(t, err)
	assert.Equal(t, stored, found)

	_, err = db.Archive(ctx, DB, db.Stanza{GuildID: 6, Meter: "short", Content: "come we that love the lord\nand let our joys be known!"})
	assert.ErrorIs(t, err, db.ErrDuplicate)
}

func TestArchive_RollsBackWithoutHash(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "rollback.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = sqlDB.Exec(`CREATE TRIGGER fail_hash BEFORE INSERT ON stanza_hash
		BEGIN SELECT RAISE(ABORT, 'no hashes'); END;`)
	require.NoError(t, err)

	_, err = db.Archive(ctx, sqlDB, db.Stanza{StanzaID: "tx-1", GuildID: 8, Meter: "common", Content: "There is a land of pure delight"})
	assert.Error(t, err)

	// the stanza row is rolled back along with its hash
	found, err := db.StanzaDAO.FindByID(ctx, sqlDB, "tx-1")
	require.NoError(t, err)
	assert.Empty(t, found.StanzaID)

	count, err := db.StanzaDAO.Count(ctx, sqlDB, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestDuplicateHash(t *testing.T) {
	equal := [][]string{
		{"asdf", "asdf"},
		{"asdf", "ASDF"},
		{"asdf", "asd'f"},
		{"Asdf,", "\"asDf\""},
	}
	notEqual := [][]string{
		{"asdf", "Asdfs"},
		{"gasdf", "asdf"},
		{"asdf", "as df"},
		{"asdf", "as\ndf"},
	}

	for _, tt := range equal {
		assert.Equal(t, db.DuplicateHash(tt[0]), db.DuplicateHash(tt[1]), "hash('%s') != hash('%s')", tt[0], tt[1])
	}
	for _, tt := range notEqual {
		assert.NotEqual(t, db.DuplicateHash(tt[0]), db.DuplicateHash(tt[1]), "hash('%s') == hash('%s')", tt[0], tt[1])
	}
}

func TestUpdateHashes(t *testing.T) {
	ctx := context.Background()

	content := "Our shelter from the stormy blast,\nAnd our eternal home."
	_, err := db.StanzaDAO.Upsert(ctx, DB, db.Stanza{"u-1", 7, 7, "common", content})
	require.NoError(t, err)

	hash := db.DuplicateHash(content)
	sid, err := db.StanzaHashDAO.FindByMD5(ctx, DB, hash[:])
	require.NoError(t, err)
	assert.Empty(t, sid)

	added, err := db.UpdateHashes(ctx, DB)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, added, 1)

	sid, err = db.StanzaHashDAO.FindByMD5(ctx, DB, hash[:])
	require.NoError(t, err)
	assert.Equal(t, "u-1", sid)

	added, err = db.UpdateHashes(ctx, DB)
	require.NoError(t, err)
	assert.Zero(t, added)

	_, err = db.Archive(ctx, DB, db.Stanza{GuildID: 7, Meter: "common", Content: content})
	assert.ErrorIs(t, err, db.ErrDuplicate)
}
