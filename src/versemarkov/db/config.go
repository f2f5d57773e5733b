package db

import (
	"context"
	"strings"

	"github.com/jonbodner/proteus"
)

// ConfigFlag is a bitmask of bot features enabled for a guild or channel.
type ConfigFlag int64

func (f ConfigFlag) ServeOnMention() bool {
	return f&ConfigServeOnMention > 0
}

func (f ConfigFlag) ArchiveStanzas() bool {
	return f&ConfigArchiveStanzas > 0
}

func (f ConfigFlag) ServeArchived() bool {
	return f&ConfigServeArchived > 0
}

func (f ConfigFlag) Or(other ConfigFlag) ConfigFlag {
	return f | other
}

func (f ConfigFlag) And(other ConfigFlag) ConfigFlag {
	return f & other
}

func (f ConfigFlag) String() string {
	var names []string
	for _, feat := range Features {
		if f&feat.Flag > 0 {
			names = append(names, feat.Name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

const (
	ConfigServeOnMention ConfigFlag = 1 << iota
	ConfigArchiveStanzas
	ConfigServeArchived
)

// Features names every flag as it is written in admin commands.
var Features = []struct {
	Name string
	Flag ConfigFlag
}{
	{"ServeOnMention", ConfigServeOnMention},
	{"ArchiveStanzas", ConfigArchiveStanzas},
	{"ServeArchived", ConfigServeArchived},
}

// LookupFlags combines the guild-wide and channel flags.
func LookupFlags(ctx context.Context, e proteus.ContextQuerier, guildID int, channelID int) (ConfigFlag, error) {
	chanConf, err := ChannelConfigDAO.FindByID(ctx, e, channelID)
	if err != nil {
		return 0, err
	}
	guildConf, err := GuildConfigDAO.FindByID(ctx, e, guildID)
	if err != nil {
		return 0, err
	}
	return guildConf.Flags.Or(chanConf.Flags), nil
}

type ChannelConfig struct {
	ChannelID int        `prof:"channel_id"`
	Flags     ConfigFlag `prof:"flags"`
}

var ChannelConfigDAO ChannelConfigDAOImpl

type ChannelConfigDAOImpl struct {
	Upsert   func(ctx context.Context, e proteus.ContextExecutor, channelID int, flags int64) (int64, error) `proq:"q:chan_upsert" prop:"channelID,flags"`
	FindByID func(ctx context.Context, e proteus.ContextQuerier, channelID int) (ChannelConfig, error)       `proq:"q:chan_findByID" prop:"channelID"`
}

// GuildConfig holds guild-wide flags and the meter used for stanzas served in the guild.
type GuildConfig struct {
	GuildID int        `prof:"guild_id"`
	Flags   ConfigFlag `prof:"flags"`
	Meter   string     `prof:"meter"`
}

var GuildConfigDAO GuildConfigDAOImpl

type GuildConfigDAOImpl struct {
	Upsert   func(ctx context.Context, e proteus.ContextExecutor, config GuildConfig) (int64, error) `proq:"q:guild_upsert" prop:"config"`
	FindByID func(ctx context.Context, e proteus.ContextQuerier, guildID int) (GuildConfig, error)   `proq:"q:guild_findByID" prop:"guildID"`
}

func init() {
	ctx := context.Background()
	m := proteus.MapMapper{
		"chan_upsert": `INSERT INTO channel_config (channel_id, flags)
						VALUES (:channelID:, :flags:)
						ON CONFLICT (channel_id)
						DO UPDATE SET flags = excluded.flags`,
		"chan_findByID": `SELECT * FROM channel_config WHERE channel_id = :channelID:`,
		"guild_upsert": `INSERT INTO guild_config (guild_id, flags, meter)
						VALUES (:config.GuildID:, :config.Flags:, :config.Meter:)
						ON CONFLICT (guild_id)
						DO UPDATE SET flags = excluded.flags, meter = excluded.meter`,
		"guild_findByID": `SELECT * FROM guild_config WHERE guild_id = :guildID:`,
	}
	err := proteus.ShouldBuild(ctx, &ChannelConfigDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
	err = proteus.ShouldBuild(ctx, &GuildConfigDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}
