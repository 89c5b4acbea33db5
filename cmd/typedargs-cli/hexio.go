package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MartinScharrer/typedargs/pkg/typedargs"
)

// hexioArgs is the typed result the declaration below binds to.
type hexioArgs struct {
	verbose int
	command string
	input   string
	output  string
	upper   bool
	wrap    int
}

func newHexioCommand() *cobra.Command {
	var args hexioArgs
	ns := typedargs.NewNamespace("typedargs-cli",
		typedargs.Description("Hex encode or decode files"),
		typedargs.Version("v0.1.0"),
	)
	ns.Add("verbose", typedargs.CountVar(&args.verbose, "-v", "--verbose").
		Persistent().Help("increase log verbosity"))

	subs := ns.Subcommands("Commands").Dest(&args.command).Required()

	encode := subs.Command("encode", "Hex encode a file")
	files := encode.Group("Files", "input and output selection")
	files.Add("input", typedargs.StringVar(&args.input, "-i", "--input").
		Required().Metavar("FILE").Help("file to read"))
	files.Add("output", typedargs.StringVar(&args.output, "-o", "--output").
		Default("-").Metavar("FILE").Help("file to write, - for stdout"))
	encode.Add("upper", typedargs.BoolVar(&args.upper, "-U", "--upper").
		Help("emit uppercase hex"))
	encode.Add("wrap", typedargs.IntVar(&args.wrap, "-w", "--wrap").
		Default("64").ViperKey("encode.wrap").Help("wrap output after n digits, 0 disables"))
	encode.Run(func() error { return runEncode(&args) })

	decode := subs.Command("decode", "Decode a hex file")
	dfiles := decode.Group("Files", "input and output selection")
	dfiles.Add("input", typedargs.StringVar(&args.input, "-i", "--input").
		Required().Metavar("FILE").Help("file to read"))
	dfiles.Add("output", typedargs.StringVar(&args.output, "-o", "--output").
		Default("-").Metavar("FILE").Help("file to write, - for stdout"))
	decode.Run(func() error { return runDecode(&args) })

	cmd, err := ns.Build()
	cobra.CheckErr(err)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.PersistentPreRun = func(*cobra.Command, []string) {
		if args.verbose > 0 {
			setDebugLogLevel()
		}
		if err := viper.ReadInConfig(); err == nil {
			slog.Debug("loaded config " + viper.ConfigFileUsed())
		}
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.typedargs/")
	viper.AddConfigPath(".")
	return cmd
}

func runEncode(args *hexioArgs) error {
	data, err := readInput(args.input)
	if err != nil {
		return err
	}
	encoded := hex.EncodeToString(data)
	if args.upper {
		encoded = strings.ToUpper(encoded)
	}
	// The flag is viper-bound, so a config file can override the default.
	wrap := viper.GetInt("encode.wrap")
	var out strings.Builder
	for len(encoded) > 0 {
		n := len(encoded)
		if wrap > 0 && n > wrap {
			n = wrap
		}
		out.WriteString(encoded[:n])
		out.WriteByte('\n')
		encoded = encoded[n:]
	}
	slog.Debug(fmt.Sprintf("encoded %d bytes from %s", len(data), args.input))
	return writeOutput(args.output, []byte(out.String()))
}

func runDecode(args *hexioArgs) error {
	data, err := readInput(args.input)
	if err != nil {
		return err
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, string(data))
	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args.input, err)
	}
	slog.Debug(fmt.Sprintf("decoded %d bytes from %s", len(decoded), args.input))
	return writeOutput(args.output, decoded)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
