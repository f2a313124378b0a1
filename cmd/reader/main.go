// Command reader is the CLI for JuniperReader.
// It navigates a scripture corpus, manages annotations, and reads
// passages aloud through an external text-to-speech command.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperReader/core/annotation"
	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	"github.com/FocuswithJustin/JuniperReader/core/playback"
	"github.com/FocuswithJustin/JuniperReader/core/ref"
	"github.com/FocuswithJustin/JuniperReader/core/search"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
	"github.com/FocuswithJustin/JuniperReader/core/verseindex"
	"github.com/FocuswithJustin/JuniperReader/internal/api"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
	"github.com/FocuswithJustin/JuniperReader/internal/narration"
	"github.com/FocuswithJustin/JuniperReader/internal/storage"
)

const version = "0.1.0"

// CLI defines the command-line interface for reader.
var CLI struct {
	// Global flags
	Corpus    string `help:"Path to corpus file (JSON or XML, optionally xz-compressed)" short:"c" env:"READER_CORPUS" type:"path"`
	DB        string `help:"Path to annotation database" env:"READER_DB" default:"reader.db" type:"path"`
	LogLevel  string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `help:"Log format" enum:"text,json" default:"text"`

	Info     InfoCmd       `cmd:"" help:"Show corpus summary"`
	Show     ShowCmd       `cmd:"" help:"Show a verse by reference"`
	Search   SearchCmd     `cmd:"" help:"Search verses for all given words"`
	Random   RandomCmd     `cmd:"" help:"Show a random verse"`
	Annotate AnnotateGroup `cmd:"" help:"Manage notes, bookmarks and favorites"`
	Read     ReadCmd       `cmd:"" help:"Read aloud from a reference onward"`
	Serve    ServeCmd      `cmd:"" help:"Start REST API server"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// AnnotateGroup contains annotation operations.
type AnnotateGroup struct {
	Add    AnnotateAddCmd    `cmd:"" help:"Add or update an annotation"`
	Remove AnnotateRemoveCmd `cmd:"" help:"Remove an annotation"`
	List   AnnotateListCmd   `cmd:"" help:"List annotations of a kind"`
}

// loadCorpus loads the corpus named by the global flag.
func loadCorpus() (*corpus.Corpus, error) {
	if CLI.Corpus == "" {
		return nil, fmt.Errorf("no corpus specified (use --corpus or READER_CORPUS)")
	}
	return corpus.Load(CLI.Corpus)
}

// openStore opens the annotation store over the sqlite blob database.
// The caller must call the returned closer.
func openStore() (*annotation.Store, func() error, error) {
	blobs, err := storage.Open(CLI.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	store := annotation.NewStore(blobs)
	store.Load()
	return store, blobs.Close, nil
}

// resolveRef parses and resolves a human-entered reference.
func resolveRef(c *corpus.Corpus, raw string) (corpus.Address, error) {
	parsed, err := ref.Parse(raw)
	if err != nil {
		return corpus.Address{}, err
	}
	return parsed.Resolve(c)
}

// label renders an address as "Book C:V" for terminal output.
func label(c *corpus.Corpus, addr corpus.Address) string {
	return fmt.Sprintf("%s %d:%d", c.Books[addr.Book].DisplayName, addr.Chapter+1, addr.Verse+1)
}

// InfoCmd shows a corpus summary.
type InfoCmd struct{}

func (cmd *InfoCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	ix := verseindex.Build(c)
	fmt.Printf("Title:   %s\n", c.Title)
	fmt.Printf("Books:   %d\n", len(c.Books))
	fmt.Printf("Verses:  %d\n", ix.Len())
	fmt.Printf("Source:  %s\n", c.SourcePath)
	fmt.Printf("Hash:    %s\n", c.SourceHash)
	fmt.Println()
	for i, b := range c.Books {
		fmt.Printf("  %3d  %-24s %d chapters\n", i, b.DisplayName, len(b.Chapters))
	}
	return nil
}

// ShowCmd shows a single verse by reference.
type ShowCmd struct {
	Ref []string `arg:"" help:"Reference, e.g. 'John 3:16' or '1 John 4'"`
}

func (cmd *ShowCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	addr, err := resolveRef(c, strings.Join(cmd.Ref, " "))
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", label(c, addr), addr.Text(c))
	return nil
}

// SearchCmd searches all verses for the given words.
type SearchCmd struct {
	Words []string `arg:"" help:"Words to search for (all must appear)"`
}

func (cmd *SearchCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	res := search.Search(strings.Join(cmd.Words, " "), verseindex.Build(c))
	if res.Insufficient {
		return fmt.Errorf("search needs at least %d words", search.MinTokens)
	}
	if len(res.Entries) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, e := range res.Entries {
		fmt.Printf("%s  %s\n", label(c, e.Address), e.Text)
	}
	fmt.Printf("\n%d matching verses\n", len(res.Entries))
	return nil
}

// RandomCmd shows a random verse.
type RandomCmd struct{}

func (cmd *RandomCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	e, ok := verseindex.Build(c).RandomEntry()
	if !ok {
		return fmt.Errorf("corpus has no verses")
	}
	fmt.Printf("%s  %s\n", label(c, e.Address), e.Text)
	return nil
}

// AnnotateAddCmd adds or updates an annotation.
type AnnotateAddCmd struct {
	Kind string   `arg:"" help:"Annotation kind" enum:"note,bookmark,favorite"`
	Ref  []string `arg:"" help:"Verse reference"`
	Text string   `help:"Note body (notes only)" short:"t"`
}

func (cmd *AnnotateAddCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	addr, err := resolveRef(c, strings.Join(cmd.Ref, " "))
	if err != nil {
		return err
	}
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	payload := annotation.Payload{
		BookName:     c.Books[addr.Book].DisplayName,
		SnapshotText: addr.Text(c),
	}
	if cmd.Text != "" {
		payload.CustomText = &cmd.Text
	}
	ann, err := store.Upsert(annotation.Kind(cmd.Kind), addr, payload)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s on %s (id %s)\n", ann.Kind, label(c, addr), ann.ID)
	if err := store.LastError(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: annotation not persisted: %v\n", err)
	}
	return nil
}

// AnnotateRemoveCmd removes an annotation.
type AnnotateRemoveCmd struct {
	Kind string   `arg:"" help:"Annotation kind" enum:"note,bookmark,favorite"`
	Ref  []string `arg:"" help:"Verse reference"`
}

func (cmd *AnnotateRemoveCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	addr, err := resolveRef(c, strings.Join(cmd.Ref, " "))
	if err != nil {
		return err
	}
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Remove(annotation.Kind(cmd.Kind), addr); err != nil {
		return err
	}
	fmt.Printf("Removed %s on %s\n", cmd.Kind, label(c, addr))
	return nil
}

// AnnotateListCmd lists annotations of one kind.
type AnnotateListCmd struct {
	Kind string `arg:"" help:"Annotation kind" enum:"note,bookmark,favorite"`
}

func (cmd *AnnotateListCmd) Run() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	list := store.ListByKind(annotation.Kind(cmd.Kind))
	if len(list) == 0 {
		fmt.Printf("No %ss.\n", cmd.Kind)
		return nil
	}
	for _, a := range list {
		line := fmt.Sprintf("%s %d:%d  %s", a.BookName, a.Address.Chapter+1, a.Address.Verse+1, a.SnapshotText)
		if a.CustomText != "" {
			line += fmt.Sprintf("  [%s]", a.CustomText)
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d %ss\n", len(list), cmd.Kind)
	return nil
}

// ReadCmd reads aloud starting from a reference until the end of the
// corpus, Ctrl-C, or a narration command that cannot be started.
type ReadCmd struct {
	Ref       []string      `arg:"" help:"Verse reference to start from"`
	TTS       string        `help:"Text-to-speech command" default:"espeak"`
	Voice     string        `help:"Narration voice" default:"default"`
	Rate      float64       `help:"Speech rate multiplier" default:"1.0"`
	WrapDelay time.Duration `help:"Pause before a new chapter or book" default:"2s"`
	Silent    bool          `help:"Advance through verses without speaking (for dry runs)"`
}

func (cmd *ReadCmd) Run() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	addr, err := resolveRef(c, strings.Join(cmd.Ref, " "))
	if err != nil {
		return err
	}

	var narrator playback.Narrator = &narration.CommandNarrator{Command: cmd.TTS}
	if cmd.Silent {
		narrator = narration.NullNarrator{}
	}

	coord := playback.NewCoordinator(c, narrator, playback.Config{
		Voice:     cmd.Voice,
		Rate:      cmd.Rate,
		WrapDelay: cmd.WrapDelay,
	})

	done := make(chan struct{}, 1)
	coord.OnPositionChange(func(a corpus.Address, reading bool) {
		if !reading {
			select {
			case done <- struct{}{}:
			default:
			}
			return
		}
		fmt.Printf("%s  %s\n", label(c, a), a.Text(c))
	})

	if err := coord.Start(addr); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case <-done:
	case <-interrupt:
		coord.Stop()
		fmt.Println("\nStopped.")
	}
	return nil
}

// ServeCmd starts the REST API server. Flags carry the same READER_
// env fallbacks internal/api reads, so an explicit flag wins, then the
// environment, then the default.
type ServeCmd struct {
	Port      int           `help:"HTTP server port" env:"READER_PORT" default:"8080"`
	TTS       string        `help:"Text-to-speech command (empty disables playback endpoints)" env:"READER_TTS"`
	Voice     string        `help:"Narration voice" env:"READER_VOICE" default:"default"`
	Rate      float64       `help:"Speech rate multiplier" env:"READER_RATE" default:"1.0"`
	WrapDelay time.Duration `help:"Pause before a new chapter or book" env:"READER_WRAP_DELAY" default:"2s"`
}

func (cmd *ServeCmd) Run() error {
	cfg, err := api.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// The flags already resolved against the same READER_ variables, so
	// these assignments keep flag > env > default precedence.
	cfg.Port = cmd.Port
	cfg.Voice = cmd.Voice
	cfg.Rate = cmd.Rate
	cfg.WrapDelay = cmd.WrapDelay
	if CLI.Corpus != "" {
		cfg.CorpusPath = CLI.Corpus
	}
	if CLI.DB != "" {
		cfg.DBPath = CLI.DB
	}

	if cfg.CorpusPath == "" {
		return fmt.Errorf("no corpus specified (use --corpus or READER_CORPUS)")
	}
	c, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return err
	}
	ix := verseindex.Build(c)
	logging.CorpusLoaded(cfg.CorpusPath, len(c.Books), ix.Len(), "title", c.Title)

	blobs, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer blobs.Close()
	store := annotation.NewStore(blobs)
	store.Load()

	var coord *playback.Coordinator
	if cmd.TTS != "" {
		coord = playback.NewCoordinator(c, &narration.CommandNarrator{Command: cmd.TTS}, playback.Config{
			Voice:     cfg.Voice,
			Rate:      cfg.Rate,
			WrapDelay: cfg.WrapDelay,
		})
	}

	return api.NewServer(cfg, c, store, coord).Start()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Printf("reader version %s\n", version)
	fmt.Printf("sqlite driver: %s\n", sqlite.Description())
	return nil
}

func parseLogLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseLogFormat(s string) logging.Format {
	if s == "json" {
		return logging.FormatJSON
	}
	return logging.FormatText
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("reader"),
		kong.Description("Juniper Reader - scripture navigation, annotation and narration"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(parseLogLevel(CLI.LogLevel), parseLogFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
