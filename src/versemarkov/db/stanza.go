package db

import (
	"context"

	"github.com/jonbodner/proteus"
)

// Stanza is an archived generated stanza. GuildID and ChannelID are zero for stanzas served
// over HTTP.
type Stanza struct {
	StanzaID  string `prof:"stanza_id"`
	GuildID   int    `prof:"guild_id"`
	ChannelID int    `prof:"channel_id"`
	Meter     string `prof:"meter"`
	Content   string `prof:"content"`
}

var StanzaDAO StanzaDaoImpl

type StanzaDaoImpl struct {
	Upsert   func(ctx context.Context, e proteus.ContextExecutor, s Stanza) (int64, error)             `proq:"q:upsert" prop:"s"`
	Random   func(ctx context.Context, e proteus.ContextQuerier, guildID int) (Stanza, error)          `proq:"q:random" prop:"guildID"`
	FindByID func(ctx context.Context, e proteus.ContextQuerier, stanzaID string) (Stanza, error)      `proq:"q:findByID" prop:"stanzaID"`
	Count    func(ctx context.Context, e proteus.ContextQuerier, guildID int) (int64, error)           `proq:"q:count" prop:"guildID"`
}

func init() {
	m := proteus.MapMapper{
		"upsert": `INSERT INTO stanza (stanza_id, guild_id, channel_id, meter, content)
				   VALUES (:s.StanzaID:,:s.GuildID:,:s.ChannelID:,:s.Meter:,:s.Content:)
				   ON CONFLICT(stanza_id)
				   DO UPDATE SET content = excluded.content`,
		"findByID": `SELECT * FROM stanza WHERE stanza_id = :stanzaID:`,
		"random":   `SELECT * FROM stanza WHERE guild_id = :guildID: ORDER BY RANDOM() LIMIT 1`,
		"count":    `SELECT COUNT(*) FROM stanza WHERE guild_id = :guildID:`,
	}
	err := proteus.ShouldBuild(context.Background(), &StanzaDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}
