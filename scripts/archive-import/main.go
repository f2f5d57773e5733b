// Command archive-import loads hand-written stanzas into the archive. Stanzas are separated by
// blank lines; only those whose line lengths match a built-in meter are stored.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/kalexmills/verse-hammer/src/dict"
	"github.com/kalexmills/verse-hammer/src/versemarkov"
	"github.com/kalexmills/verse-hammer/src/versemarkov/db"
)

func main() {
	in := flag.String("in", "", "text file of stanzas separated by blank lines")
	dbPath := flag.String("db", "./verseDB.sqlite3", "sqlite archive to import into")
	guildID := flag.Int("guild", 0, "guild the stanzas are archived under")
	flag.Parse()

	text, err := ioutil.ReadFile(*in)
	FatalError(err)

	DB, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}
	defer DB.Close()

	ctx := context.Background()
	d := dict.Default()
	imported := 0
	for _, stanza := range splitStanzas(string(text)) {
		meter, ok := matchMeter(d, stanza)
		if !ok {
			log.Printf("skipping stanza matching no meter: %q", stanza[0])
			continue
		}
		_, err := db.Archive(ctx, DB, db.Stanza{
			GuildID: *guildID,
			Meter:   meter.Name,
			Content: strings.Join(stanza, "\n"),
		})
		if errors.Is(err, db.ErrDuplicate) {
			continue
		}
		if err != nil {
			log.Fatal("couldn't write to db, ", err)
		}
		imported++
	}
	log.Printf("imported %d stanzas", imported)
}

func splitStanzas(text string) [][]string {
	var result [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				result = append(result, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		result = append(result, current)
	}
	return result
}

func matchMeter(d *dict.Dictionary, stanza []string) (versemarkov.Meter, bool) {
outer:
	for _, meter := range versemarkov.Meters {
		if len(meter.Lines) != len(stanza) {
			continue
		}
		for i, line := range stanza {
			if versemarkov.LineSyllables(d, strings.Fields(line)) != meter.Lines[i].Syllables {
				continue outer
			}
		}
		return meter, true
	}
	return versemarkov.Meter{}, false
}

func FatalError(err error) {
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}
}
