package versebot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/kalexmills/verse-hammer/src/versemarkov"
	"github.com/kalexmills/verse-hammer/src/versemarkov/db"
)

// adminCommandPerms is a bitmask for the min permissions required to send admin commands. If any flag is set, the
// user can send VerseHammer admin commands.
const adminCommandPerms = discordgo.PermissionAdministrator | discordgo.PermissionManageChannels | discordgo.PermissionManageServer

// HandleCommand parses and runs a `!verse` command. Feature and meter commands require admin permissions.
func (h *VerseHammer) HandleCommand(s *discordgo.Session, m *discordgo.Message) {
	command, err := parseCommand(strings.TrimPrefix(m.Content, commandPrefix))
	if err != nil {
		h.reply(s, m, err.Error())
		return
	}

	switch command.Operation {
	case OpHelp:
		h.reply(s, m, AdminHelp)
		return
	case OpRandom:
		h.handleRandom(s, m)
		return
	}

	if h.db == nil {
		h.reply(s, m, "No database is configured; settings cannot be changed.")
		return
	}
	perms, err := h.Permissions(s, m)
	if err != nil {
		log.Println("could not retrieve permissions for user, ignoring admin command,", err)
		return
	}
	if perms&adminCommandPerms == 0 {
		if h.config.Debug {
			log.Printf("could not verify admin permissions, found perms %d, expected %d", perms, adminCommandPerms)
		}
		h.reply(s, m, fmt.Sprintf("You do not have permissions to manage VerseHammer in <#%s>", m.ChannelID))
		return
	}

	switch command.Operation {
	case OpFeatureOn:
		h.updateFeatures(m, command, EnableFeatures)
		h.reply(s, m, fmt.Sprintf("Enabled features %s for target %s", command.Features, command.MentionTarget()))
	case OpFeatureOff:
		h.updateFeatures(m, command, DisableFeatures)
		h.reply(s, m, fmt.Sprintf("Disabled features %s for target %s", command.Features, command.MentionTarget()))
	case OpFeatureList:
		h.handleFeatureList(s, m, command)
	case OpMeter:
		if err := h.updateMeter(m, command.Meter); err != nil {
			log.Println("could not update guild meter,", err)
			return
		}
		h.reply(s, m, fmt.Sprintf("Stanzas in this guild will now be written in %s", command.Meter))
	}
}

func (h *VerseHammer) handleRandom(s *discordgo.Session, m *discordgo.Message) {
	flags, err := h.flags(m)
	if err != nil {
		log.Println("could not look up feature flags,", err)
		return
	}
	if !flags.ServeArchived() {
		h.reply(s, m, "Serving archived stanzas is not enabled here.")
		return
	}
	h.ServeArchived(s, m)
}

func (h *VerseHammer) Permissions(s *discordgo.Session, m *discordgo.Message) (int64, error) {
	g, err := s.Guild(m.GuildID)
	if err != nil {
		return 0, err
	}
	if g.OwnerID == m.Author.ID {
		return discordgo.PermissionAll, nil
	}
	member, err := s.GuildMember(m.GuildID, m.Author.ID)
	if err != nil {
		return 0, err
	}
	roles, err := s.GuildRoles(m.GuildID)
	if err != nil {
		return 0, err
	}
	return memberPermissions(roles, member.Roles), nil
}

// memberPermissions unions the @everyone role with the member's roles.
func memberPermissions(roles []*discordgo.Role, memberRoles []string) int64 {
	byID := make(map[string]int64)
	var everyone int64
	for _, role := range roles {
		byID[role.ID] = role.Permissions
		if role.Name == "@everyone" {
			everyone = role.Permissions
		}
	}
	permissions := everyone
	for _, id := range memberRoles {
		permissions |= byID[id]
	}
	if permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return discordgo.PermissionAll
	}
	return permissions
}

func (h *VerseHammer) handleFeatureList(s *discordgo.Session, m *discordgo.Message, command Command) {
	ctx := context.Background()
	switch command.Target {
	case "global":
		gid, err := strconv.Atoi(m.GuildID)
		if err != nil {
			log.Println("could not parse guildID as integer,", m.GuildID)
			return
		}
		currConfig, err := db.GuildConfigDAO.FindByID(ctx, h.db, gid)
		if err != nil {
			log.Println("could not read guild config from database,", err)
			return
		}
		h.reply(s, m, fmt.Sprintf("Features enabled for target %s: %s", command.MentionTarget(), currConfig.Flags))
	default:
		cid, err := strconv.Atoi(command.Target)
		if err != nil {
			log.Println("could not parse channelID as integer,", command.Target)
			return
		}
		currConfig, err := db.ChannelConfigDAO.FindByID(ctx, h.db, cid)
		if err != nil {
			log.Println("could not read channel config from database,", err)
			return
		}
		h.reply(s, m, fmt.Sprintf("Features enabled for target %s: %s", command.MentionTarget(), currConfig.Flags))
	}
}

type featureMutator func(db.ConfigFlag, db.ConfigFlag) db.ConfigFlag

func EnableFeatures(current db.ConfigFlag, feats db.ConfigFlag) db.ConfigFlag {
	return current.Or(feats)
}

func DisableFeatures(current db.ConfigFlag, feats db.ConfigFlag) db.ConfigFlag {
	return current.And(^feats) // and with bitwise not
}

func (h *VerseHammer) updateFeatures(m *discordgo.Message, command Command, mutator featureMutator) {
	ctx := context.Background()
	switch command.Target {
	case "global":
		gid, err := strconv.Atoi(m.GuildID)
		if err != nil {
			log.Println("could not parse guildID as integer,", m.GuildID)
			return
		}
		currConfig, err := db.GuildConfigDAO.FindByID(ctx, h.db, gid) // read
		if err != nil {
			log.Println("could not retrieve guild config,", err)
		}

		// modify
		currConfig.GuildID = gid
		currConfig.Flags = mutator(currConfig.Flags, command.Features)

		_, err = db.GuildConfigDAO.Upsert(ctx, h.db, currConfig) // write
		if err != nil {
			log.Println("could not update guild config,", err)
		}
	default: // channel ID (target was verified by parseCommand)
		cid, err := strconv.Atoi(command.Target)
		if err != nil {
			log.Println("could not parse channelID as integer,", command.Target)
			return
		}
		currConfig, err := db.ChannelConfigDAO.FindByID(ctx, h.db, cid) // read
		if err != nil {
			log.Println("could not retrieve channel config,", err)
		}

		currConfig.Flags = mutator(currConfig.Flags, command.Features)

		_, err = db.ChannelConfigDAO.Upsert(ctx, h.db, cid, int64(currConfig.Flags)) // write
		if err != nil {
			log.Println("could not update channel config,", err)
		}
	}
}

func (h *VerseHammer) updateMeter(m *discordgo.Message, meter string) error {
	ctx := context.Background()
	gid, err := strconv.Atoi(m.GuildID)
	if err != nil {
		return fmt.Errorf("could not parse guildID %q: %w", m.GuildID, err)
	}
	currConfig, err := db.GuildConfigDAO.FindByID(ctx, h.db, gid)
	if err != nil {
		return err
	}
	currConfig.GuildID = gid
	currConfig.Meter = meter
	_, err = db.GuildConfigDAO.Upsert(ctx, h.db, currConfig)
	return err
}

type Operation uint8

const (
	OpFeatureOn Operation = iota
	OpFeatureOff
	OpFeatureList
	OpMeter
	OpRandom
	OpHelp
)

type Command struct {
	Operation Operation
	Target    string
	Features  db.ConfigFlag
	Meter     string
}

func (c Command) MentionTarget() string {
	if c.Target == "global" {
		return "global"
	}
	return fmt.Sprintf("<#%s>", c.Target)
}

func parseCommand(content string) (Command, error) {
	var err error
	tokens := strings.Fields(content)
	if len(tokens) < 1 {
		return Command{}, errors.New("expected a valid command after `!verse`; send `!verse help` for help")
	}
	command := tokens[0]
	if command == "feature" && len(tokens) > 1 {
		command += " " + tokens[1]
	}
	result := Command{}
	switch command {
	case "feature on":
		result.Operation = OpFeatureOn
		if len(tokens) < 4 {
			return Command{}, errors.New("expected a target and list of features after `feature on`; send `!verse help` for help")
		}
	case "feature off":
		result.Operation = OpFeatureOff
		if len(tokens) < 4 {
			return Command{}, errors.New("expected a target and list of features after `feature off`; send `!verse help` for help")
		}
	case "feature list":
		result.Operation = OpFeatureList
		if len(tokens) < 3 {
			return Command{}, errors.New("expected a target after `feature list`; send `!verse help` for help")
		}
	case "meter":
		if len(tokens) != 2 {
			return Command{}, errors.New("expected exactly one meter name after `meter`; send `!verse help` for help")
		}
		meter, err := versemarkov.MeterByName(tokens[1])
		if err != nil {
			return Command{}, fmt.Errorf("could not understand '%s' as a meter; send `!verse help` for help", tokens[1])
		}
		return Command{Operation: OpMeter, Meter: meter.Name}, nil
	case "random":
		return Command{Operation: OpRandom}, nil
	case "help":
		return Command{Operation: OpHelp}, nil
	default:
		return Command{}, fmt.Errorf("could not understand command %s", command)
	}

	result.Target, err = parseTarget(tokens[2])
	if err != nil {
		return Command{}, err
	}

	result.Features, err = parseFeatures(tokens[3:])
	if err != nil {
		return Command{}, err
	}
	return result, nil
}

// parseTarget accepts `global` or a channel mention, returning the bare channel ID for the latter.
func parseTarget(target string) (string, error) {
	if target == "global" {
		return target, nil
	}
	if !strings.HasPrefix(target, "<#") || !strings.HasSuffix(target, ">") {
		return "", fmt.Errorf("couldn't parse target '%s' as valid target", target)
	}
	id, err := strconv.ParseUint(target[2:len(target)-1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("couldn't parse target '%s' as valid channel mention", target)
	}
	return strconv.FormatUint(id, 10), nil
}

func parseFeatures(features []string) (db.ConfigFlag, error) {
	var result db.ConfigFlag
outer:
	for _, feature := range features {
		for _, feat := range db.Features {
			if strings.EqualFold(feat.Name, feature) {
				result |= feat.Flag
				continue outer
			}
		}
		return 0, fmt.Errorf("could not understand '%s' as a valid feature; send `!verse help` for help", feature)
	}
	return result, nil
}

var AdminHelp = `Commands apply to the guild they are sent in.
  ~~~!verse random~~~ - quote a stanza archived in this guild
  ~~~!verse help~~~ - show this message

Admin commands:
  ~~~!verse feature on [target] [feature feature...]~~~
  ~~~!verse feature off [target] [feature feature...]~~~
  ~~~!verse feature list [target]~~~
  ~~~!verse meter [meter]~~~

~~~[target]~~~ can be either a channel mention or ~~~global~~~ to enable features for every channel in the guild.
~~~[feature feature...]~~~ is a space-separated list of features from the below list.

   - ~~~ServeOnMention~~~ - replies to mentions with a freshly written stanza
   - ~~~ArchiveStanzas~~~ - stores every stanza served so it can be quoted later
   - ~~~ServeArchived~~~ - allows ~~~!verse random~~~ to quote archived stanzas

~~~[meter]~~~ is one of METERS.
`

func init() {
	AdminHelp = strings.ReplaceAll(AdminHelp, "~~~", "`")
	var names []string
	for _, m := range versemarkov.Meters {
		names = append(names, "`"+m.String()+"`")
	}
	AdminHelp = strings.Replace(AdminHelp, "METERS", strings.Join(names, ", "), 1)
}
