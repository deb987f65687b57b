// bencode - canonical bencode CLI tool
//
// Usage:
//
//	bencode from-json [file]    Convert JSON (or JSONC) to bencode
//	bencode to-json [file]      Convert bencode to JSON
//	bencode to-cbor [file]      Convert bencode to deterministic CBOR
//	bencode to-msgpack [file]   Convert bencode to MessagePack
//	bencode inspect [file]      Print the structure of a bencode stream
//	bencode torrent <file>      Build a .torrent for a file
//	bencode version             Print version info
//
// The --zstd flag treats the bencode side of a conversion as
// zstd-compressed: inputs are decompressed, outputs are compressed.
//
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/canonwire/bencode"
	"github.com/canonwire/bencode/torrent"
	"github.com/canonwire/bencode/transcode"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	flags := pflag.NewFlagSet("bencode "+cmd, pflag.ExitOnError)
	useZstd := flags.Bool("zstd", false, "bencode data is zstd-compressed")
	outPath := flags.StringP("output", "o", "", "write output to this file instead of stdout")
	verbose := flags.BoolP("verbose", "v", false, "log progress to stderr")

	// torrent-only flags; harmless no-ops elsewhere
	announce := flags.String("announce", "", "tracker announce URL")
	comment := flags.String("comment", "", "comment field")
	pieceLength := flags.Int64("piece-length", 0, "piece length in bytes (default 256 KiB)")
	private := flags.Bool("private", false, "set the private flag")

	if err := flags.Parse(args); err != nil {
		fatal("%v", err)
	}
	fileArg := flags.Arg(0)

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fatal("logger: %v", err)
		}
		defer logger.Sync()
		torrent.SetLogger(logger)
	}

	switch cmd {
	case "from-json":
		data := readInput(fileArg, false)
		out, err := transcode.FromJSON(data)
		if err != nil {
			fatal("%v", err)
		}
		writeOutput(*outPath, out, *useZstd)

	case "to-json":
		data := readInput(fileArg, *useZstd)
		out, err := transcode.ToJSON(data)
		if err != nil {
			fatal("%v", err)
		}
		writeOutput(*outPath, append(out, '\n'), false)

	case "to-cbor":
		data := readInput(fileArg, *useZstd)
		out, err := transcode.ToCBOR(data)
		if err != nil {
			fatal("%v", err)
		}
		writeOutput(*outPath, out, false)

	case "to-msgpack":
		data := readInput(fileArg, *useZstd)
		out, err := transcode.ToMsgpack(data)
		if err != nil {
			fatal("%v", err)
		}
		writeOutput(*outPath, out, false)

	case "inspect":
		data := readInput(fileArg, *useZstd)
		v, err := bencode.Decode(data)
		if err != nil {
			fatal("%v", err)
		}
		var sb strings.Builder
		renderValue(&sb, v, 0)
		writeOutput(*outPath, []byte(sb.String()), false)

	case "torrent":
		if fileArg == "" {
			fatal("torrent: missing payload file")
		}
		meta, err := torrent.CreateFromFile(fileArg, torrent.CreateOptions{
			Announce:    *announce,
			Comment:     *comment,
			CreatedBy:   "bencode/" + version,
			PieceLength: *pieceLength,
			Private:     *private,
		})
		if err != nil {
			fatal("%v", err)
		}
		out, err := meta.Marshal()
		if err != nil {
			fatal("%v", err)
		}
		hash, err := meta.Info.Hash()
		if err != nil {
			fatal("%v", err)
		}
		fmt.Fprintf(os.Stderr, "infohash: %x\n", hash)
		writeOutput(*outPath, out, *useZstd)

	case "version":
		fmt.Printf("bencode %s\n", version)

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "bencode: unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

// readInput reads a file argument ("" or "-" means stdin), optionally
// decompressing zstd.
func readInput(fileArg string, compressed bool) []byte {
	var r io.Reader = os.Stdin
	if fileArg != "" && fileArg != "-" {
		f, err := os.Open(fileArg)
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		r = f
	}
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			fatal("zstd: %v", err)
		}
		defer zr.Close()
		r = zr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	return data
}

// writeOutput writes to the output file or stdout, optionally
// compressing with zstd.
func writeOutput(outPath string, data []byte, compress bool) {
	if compress {
		var err error
		data, err = compressZstd(data)
		if err != nil {
			fatal("zstd: %v", err)
		}
	}
	if outPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			fatal("write output: %v", err)
		}
		return
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fatal("write output: %v", err)
	}
}

func compressZstd(data []byte) ([]byte, error) {
	zw, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	out := zw.EncodeAll(data, nil)
	return out, zw.Close()
}

// renderValue prints a decoded bencode tree with indentation. Byte
// strings that look like binary data are summarized rather than dumped.
func renderValue(sb *strings.Builder, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case int64:
		fmt.Fprintf(sb, "%sint %d\n", indent, val)
	case uint64:
		fmt.Fprintf(sb, "%sint %d\n", indent, val)
	case string:
		if printable(val) {
			fmt.Fprintf(sb, "%sstr %q\n", indent, val)
		} else {
			fmt.Fprintf(sb, "%sbin <%d bytes>\n", indent, len(val))
		}
	case []any:
		fmt.Fprintf(sb, "%slist (%d items)\n", indent, len(val))
		for _, item := range val {
			renderValue(sb, item, depth+1)
		}
	case map[string]any:
		fmt.Fprintf(sb, "%sdict (%d keys)\n", indent, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, "%s  %q:\n", indent, k)
			renderValue(sb, val[k], depth+2)
		}
	}
}

func printable(s string) bool {
	if len(s) > 512 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 && s[i] != '\n' && s[i] != '\t' {
			return false
		}
	}
	return true
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `bencode - canonical bencode CLI tool

Usage:
  bencode from-json [file]    Convert JSON (or JSONC) to bencode
  bencode to-json [file]      Convert bencode to JSON
  bencode to-cbor [file]      Convert bencode to deterministic CBOR
  bencode to-msgpack [file]   Convert bencode to MessagePack
  bencode inspect [file]      Print the structure of a bencode stream
  bencode torrent <file>      Build a .torrent for a file
  bencode version             Print version info

Flags:
  --zstd                the bencode side of the conversion is zstd-compressed
  -o, --output FILE     write output to FILE instead of stdout
  -v, --verbose         log progress to stderr
  --announce URL        (torrent) tracker announce URL
  --comment TEXT        (torrent) comment field
  --piece-length N      (torrent) piece length in bytes
  --private             (torrent) set the private flag

If no file is given, input is read from stdin.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "bencode: "+format+"\n", args...)
	os.Exit(1)
}
