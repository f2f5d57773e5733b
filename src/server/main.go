package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kalexmills/verse-hammer/src/api"
	"github.com/kalexmills/verse-hammer/src/versebot"
	"github.com/kalexmills/verse-hammer/src/versemarkov"
	"github.com/kalexmills/verse-hammer/src/versemarkov/db"
	"github.com/spf13/viper"
)

func main() {
	readConfig()
	rand.Seed(time.Now().UnixNano())

	model, err := loadModel()
	if err != nil {
		log.Fatalf("could not build verse model: %v", err)
	}
	log.Printf("trained %d-gram model on %d contexts", model.Order(), model.Index().Len())

	var archive *sql.DB
	if path := viper.GetString("dbPath"); path != "" {
		archive, err = db.Open(path)
		if err != nil {
			log.Fatalf("could not open database: %v", err)
		}
		defer archive.Close()
		go func() {
			added, err := db.UpdateHashes(context.Background(), archive)
			if err != nil {
				log.Println("encountered error while updating hashes,", err)
				return
			}
			log.Printf("upserted %d new stanza hashes", added)
		}()
	}

	var srv *http.Server
	if addr := viper.GetString("httpAddr"); addr != "" {
		srv = &http.Server{
			Addr: addr,
			Handler: api.NewServer(model, api.Config{
				AllowedOrigins: viper.GetStringSlice("allowedOrigins"),
				DefaultMeter:   viper.GetString("defaultMeter"),
				Tries:          viper.GetInt("tries"),
				Archive:        archive,
			}).Handler(),
		}
		go func() {
			log.Printf("listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("server error: %v", err)
			}
		}()
	}

	var bot *versebot.VerseHammer
	if token := viper.GetString("token"); token != "" {
		bot = versebot.NewVerseHammer(botConfig(), model, archive)
		if err := bot.Open(); err != nil {
			log.Fatalf("fail error opening bot: %v", err)
		}
		log.Println("Bot is now running.")
	}

	if srv == nil && bot == nil {
		log.Fatalln("neither token nor httpAddr is configured, nothing to do")
	}

	log.Println("Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if bot != nil {
		// Cleanly close down the Discord session.
		if err := bot.Close(); err != nil {
			log.Println("error closing session,", err)
		}
	}
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println("error shutting down http server,", err)
		}
	}
}

func readConfig() {
	viper.SetDefault("dbPath", "./verseDB.sqlite3")
	viper.SetDefault("httpAddr", ":8080")
	viper.SetDefault("allowedOrigins", []string{"*"})
	viper.SetDefault("order", versemarkov.DefaultOrder)
	viper.SetDefault("modulus", versemarkov.DefaultModulus)
	viper.SetDefault("tries", versemarkov.DefaultTries)
	viper.SetDefault("stanzaAttempts", versemarkov.DefaultStanzaAttempts)
	viper.SetDefault("defaultMeter", versemarkov.CommonMeter.Name)
	viper.SetDefault("serveOnMention", true)
	viper.SetDefault("archiveStanzas", true)
	viper.SetDefault("serveArchived", true)
	viper.SetDefault("debug", false)

	viper.SetEnvPrefix("VERSE_HAMMER")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/versehammer")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		log.Println("no config file found, using defaults,", err)
	}
}

func loadModel() (*versemarkov.Model, error) {
	corpusPath, dictPath := viper.GetString("corpusPath"), viper.GetString("dictPath")
	if corpusPath != "" {
		log.Printf("training on corpus %s with dictionary %s", corpusPath, dictPath)
	}
	return versemarkov.Load(corpusPath, dictPath,
		versemarkov.WithOrder(viper.GetInt("order")),
		versemarkov.WithModulus(viper.GetInt("modulus")),
	)
}

func botConfig() versebot.Config {
	flags := db.ConfigFlag(0)
	if viper.GetBool("serveOnMention") {
		flags |= db.ConfigServeOnMention
	}
	if viper.GetBool("archiveStanzas") {
		flags |= db.ConfigArchiveStanzas
	}
	if viper.GetBool("serveArchived") {
		flags |= db.ConfigServeArchived
	}
	return versebot.Config{
		Token:        viper.GetString("token"),
		DefaultFlags: flags,
		DefaultMeter: viper.GetString("defaultMeter"),
		Attempts:     viper.GetInt("stanzaAttempts"),
		Tries:        viper.GetInt("tries"),
		Debug:        viper.GetBool("debug"),
	}
}
