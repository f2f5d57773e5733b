// Command verse prints lines or stanzas generated from a corpus.
//
// Flag defaults are read through viper, so VERSE_HAMMER_* environment variables and the
// server's config file apply here as well.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/kalexmills/verse-hammer/src/versemarkov"
	"github.com/spf13/viper"
)

func main() {
	readConfig()

	corpusPath := flag.String("corpus", viper.GetString("corpusPath"), "training text, one verse line per line; empty uses the built-in hymns")
	dictPath := flag.String("dict", viper.GetString("dictPath"), "CMU-format pronouncing dictionary; required with -corpus, empty uses the built-in dictionary")
	order := flag.Int("n", viper.GetInt("order"), "n-gram order")
	modulus := flag.Int("k", viper.GetInt("modulus"), "syllable offset modulus")
	tries := flag.Int("tries", viper.GetInt("tries"), "attempts per line")
	meterName := flag.String("meter", viper.GetString("defaultMeter"), "stanza meter: common, long or short")
	syllables := flag.Int("syllables", 0, "print single lines of this many syllables instead of stanzas")
	rhyme := flag.String("rhyme", "", "word the final word of each single line must rhyme with")
	count := flag.Int("count", 1, "number of lines or stanzas to print")
	seed := flag.Int64("seed", 0, "random seed; zero seeds from the clock")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(*seed))

	model, err := loadModel(*corpusPath, *dictPath, *order, *modulus)
	FatalError(err)

	lineOpts := []versemarkov.GenerateOption{versemarkov.WithRand(r), versemarkov.WithTries(*tries)}
	if *syllables > 0 {
		if *rhyme != "" {
			lineOpts = append(lineOpts, versemarkov.WithRhyme(*rhyme))
		}
		for i := 0; i < *count; i++ {
			result, err := model.Generate(*syllables, lineOpts...)
			FatalError(err)
			if !result.Found() {
				log.Printf("no %d-syllable line found after %d attempts", *syllables, result.Attempts)
				continue
			}
			fmt.Println(result)
		}
		return
	}

	meter, err := versemarkov.MeterByName(*meterName)
	FatalError(err)
	for i := 0; i < *count; i++ {
		if i > 0 {
			fmt.Println()
		}
		stanza, err := model.Assemble(meter, versemarkov.WithLineOptions(lineOpts...))
		if err != nil {
			log.Println("could not assemble stanza,", err)
			continue
		}
		fmt.Println(stanza)
	}
}

func readConfig() {
	viper.SetDefault("order", versemarkov.DefaultOrder)
	viper.SetDefault("modulus", versemarkov.DefaultModulus)
	viper.SetDefault("tries", versemarkov.DefaultTries)
	viper.SetDefault("defaultMeter", versemarkov.CommonMeter.Name)

	viper.SetEnvPrefix("VERSE_HAMMER")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/versehammer")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil && viper.GetBool("debug") {
		log.Println("no config file found, using defaults,", err)
	}
}

func loadModel(corpusPath, dictPath string, order, modulus int) (*versemarkov.Model, error) {
	return versemarkov.Load(corpusPath, dictPath, versemarkov.WithOrder(order), versemarkov.WithModulus(modulus))
}

func FatalError(err error) {
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}
}
