package versebot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/kalexmills/verse-hammer/src/versemarkov"
	"github.com/kalexmills/verse-hammer/src/versemarkov/db"
)

const commandPrefix = "!verse"

type Config struct {
	Token string
	// DefaultFlags apply wherever neither the guild nor the channel has stored flags.
	DefaultFlags db.ConfigFlag
	DefaultMeter string
	// Attempts bounds the stanza attempts for each request.
	Attempts int
	// Tries bounds the attempts for each line within a stanza.
	Tries int

	Debug bool
}

func (c Config) String() string {
	return fmt.Sprintf("\tDefaultFlags: %s\n\tDefaultMeter: %s\n\tAttempts: %d\n\tTries: %d\n\tDebug: %t\n",
		c.DefaultFlags, c.DefaultMeter, c.Attempts, c.Tries, c.Debug)
}

// VerseHammer is a Discord bot that answers mentions with freshly generated stanzas.
type VerseHammer struct {
	session *discordgo.Session
	config  Config
	model   *versemarkov.Model
	db      *sql.DB

	mu           sync.Mutex
	channelCache map[string]*discordgo.Channel
}

func NewVerseHammer(config Config, model *versemarkov.Model, sqlDB *sql.DB) *VerseHammer {
	log.Printf("Verse Bot Config:\n%v", config)
	return &VerseHammer{
		config:       config,
		model:        model,
		db:           sqlDB,
		channelCache: make(map[string]*discordgo.Channel),
	}
}

func (h *VerseHammer) Open() error {
	var err error
	h.session, err = discordgo.New("Bot " + h.config.Token)
	if err != nil {
		log.Println("error creating Discord session,", err)
		return err
	}

	if h.config.Debug {
		h.session.LogLevel = discordgo.LogDebug
	}

	h.session.AddHandler(h.ReceiveNewMessage)
	h.session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	err = h.session.Open()
	if err != nil {
		log.Println("error opening connection,", err)
		return err
	}
	return nil
}

func (h *VerseHammer) Close() error {
	return h.session.Close()
}

func (h *VerseHammer) ReceiveNewMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic on content, %s, panicking on: %v\n%s", oneLine(m.Content), r, debug.Stack())
		}
	}()
	if m.Author == nil || m.Author.Bot { // don't talk to bots
		return
	}
	if strings.HasPrefix(m.Content, commandPrefix) {
		h.HandleCommand(s, m.Message)
		return
	}
	if isDM, err := h.isDM(s, m.ChannelID); err != nil {
		log.Println("could not lookup channel,", err)
	} else if isDM {
		h.ServeStanza(s, m.Message, h.config.DefaultMeter, false)
		return
	}
	if h.mentionsMe(s, m.Message) {
		h.HandleMention(s, m.Message)
	}
}

// HandleMention serves a stanza in the guild's meter when the channel allows it.
func (h *VerseHammer) HandleMention(s *discordgo.Session, m *discordgo.Message) {
	flags, err := h.flags(m)
	if err != nil {
		log.Println("could not look up feature flags,", err)
		return
	}
	if !flags.ServeOnMention() {
		if h.config.Debug {
			log.Printf("ignoring mention in channel %s, flags %s", m.ChannelID, flags)
		}
		return
	}
	h.ServeStanza(s, m, h.guildMeter(m.GuildID), flags.ArchiveStanzas())
}

// ServeStanza assembles a stanza in the named meter, replies with it and optionally archives it.
func (h *VerseHammer) ServeStanza(s *discordgo.Session, m *discordgo.Message, meterName string, archive bool) {
	meter, err := versemarkov.MeterByName(meterName)
	if err != nil {
		log.Println("unknown meter configured, falling back to common,", err)
		meter = versemarkov.CommonMeter
	}
	var opts []versemarkov.StanzaOption
	if h.config.Attempts > 0 {
		opts = append(opts, versemarkov.WithAttempts(h.config.Attempts))
	}
	if h.config.Tries > 0 {
		opts = append(opts, versemarkov.WithLineOptions(versemarkov.WithTries(h.config.Tries)))
	}
	stanza, err := h.model.Assemble(meter, opts...)
	if err != nil {
		log.Println("could not assemble stanza,", err)
		h.reply(s, m, "The muse is silent. Try again in a moment.")
		return
	}
	content := stanza.String()
	h.reply(s, m, quote(content))
	log.Printf("served %s stanza: %s\n", meter.Name, oneLine(content))

	if archive {
		h.archive(m, meter, content)
	}
}

func (h *VerseHammer) archive(m *discordgo.Message, meter versemarkov.Meter, content string) {
	if h.db == nil {
		return
	}
	gid, err := strconv.Atoi(m.GuildID)
	if err != nil {
		log.Println("could not parse guildID as integer, not archiving,", m.GuildID)
		return
	}
	cid, err := strconv.Atoi(m.ChannelID)
	if err != nil {
		log.Println("could not parse channelID as integer, not archiving,", m.ChannelID)
		return
	}
	stored, err := db.Archive(context.Background(), h.db, db.Stanza{
		GuildID:   gid,
		ChannelID: cid,
		Meter:     meter.Name,
		Content:   content,
	})
	if errors.Is(err, db.ErrDuplicate) {
		log.Println("served a stanza that was already archived,", err)
		return
	}
	if err != nil {
		log.Println("could not archive stanza,", err)
		return
	}
	if h.config.Debug {
		log.Println("archived stanza", stored.StanzaID)
	}
}

// ServeArchived quotes a random archived stanza from the message's guild.
func (h *VerseHammer) ServeArchived(s *discordgo.Session, m *discordgo.Message) {
	if h.db == nil {
		h.reply(s, m, "No archive is configured.")
		return
	}
	gid, err := strconv.Atoi(m.GuildID)
	if err != nil {
		log.Println("could not parse guildID as integer,", m.GuildID)
		return
	}
	stanza, err := db.StanzaDAO.Random(context.Background(), h.db, gid)
	if err != nil {
		log.Println("could not read random stanza from database,", err)
		return
	}
	if stanza.Content == "" {
		h.reply(s, m, "Nothing has been archived here yet.")
		return
	}
	h.reply(s, m, quote(stanza.Content))
}

func (h *VerseHammer) flags(m *discordgo.Message) (db.ConfigFlag, error) {
	if h.db == nil {
		return h.config.DefaultFlags, nil
	}
	gid, err := strconv.Atoi(m.GuildID)
	if err != nil {
		return 0, fmt.Errorf("could not parse guildID %q: %w", m.GuildID, err)
	}
	cid, err := strconv.Atoi(m.ChannelID)
	if err != nil {
		return 0, fmt.Errorf("could not parse channelID %q: %w", m.ChannelID, err)
	}
	flags, err := db.LookupFlags(context.Background(), h.db, gid, cid)
	if err != nil {
		return 0, err
	}
	if flags == 0 {
		return h.config.DefaultFlags, nil
	}
	return flags, nil
}

func (h *VerseHammer) guildMeter(guildID string) string {
	if h.db == nil {
		return h.config.DefaultMeter
	}
	gid, err := strconv.Atoi(guildID)
	if err != nil {
		return h.config.DefaultMeter
	}
	conf, err := db.GuildConfigDAO.FindByID(context.Background(), h.db, gid)
	if err != nil {
		log.Println("could not read guild config from database,", err)
		return h.config.DefaultMeter
	}
	if conf.Meter == "" {
		return h.config.DefaultMeter
	}
	return conf.Meter
}

func (h *VerseHammer) mentionsMe(s *discordgo.Session, m *discordgo.Message) bool {
	if s.State == nil || s.State.User == nil {
		return false
	}
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			return true
		}
	}
	return false
}

func (h *VerseHammer) reply(s *discordgo.Session, m *discordgo.Message, content string) {
	_, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		log.Println("could not send reply,", err)
	}
}

func (h *VerseHammer) isDM(s *discordgo.Session, channelID string) (bool, error) {
	c, err := h.lookupChannel(s, channelID)
	if err != nil {
		return false, err
	}
	return c.Type == discordgo.ChannelTypeDM && len(c.Recipients) == 1, nil
}

func (h *VerseHammer) lookupChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	h.mu.Lock()
	c, ok := h.channelCache[channelID]
	h.mu.Unlock()
	if ok {
		return c, nil
	}
	c, err := s.Channel(channelID)
	if err != nil {
		return nil, err
	}
	log.Println("looked up channel", channelID)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.channelCache[channelID] = c
	return c, nil
}

func quote(str string) string {
	return "> " + strings.ReplaceAll(str, "\n", "\n> ")
}

func oneLine(str string) string {
	return strings.ReplaceAll(str, "\n", "\\n")
}
