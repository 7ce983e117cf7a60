// Command uploader sends photos of one bus to a busgallery server. ZIP archives
// are expanded locally before upload.
//
//	uploader -bus <id> front.jpg side.png more.zip
//	uploader -list-buses
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	_ "github.com/joho/godotenv/autoload"

	"busgallery/internal/archive"
	"busgallery/internal/config"
	"busgallery/internal/uploader"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)
	server := fs.String("server", defaultServer(cfg.AppHost), "busgallery server base URL")
	apiKey := fs.String("api-key", cfg.Upload.APIKey, "upload API key")
	busID := fs.String("bus", "", "target bus id")
	batchKey := fs.String("batch", "", "batch key of a failed upload to retry")
	listBuses := fs.Bool("list-buses", false, "print the available buses and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := uploader.NewClient(*server, uploader.WithAPIKey(*apiKey))

	if *listBuses {
		buses, err := client.ListBuses(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, b := range buses {
			fmt.Printf("%s\t%s\t%s\n", b.ID, b.SerialNumber, b.Model.Title)
		}
		return 0
	}

	last := -1
	session := uploader.NewSession(client,
		uploader.WithBatchKey(*batchKey),
		uploader.WithResetDelay(0),
		uploader.WithProgress(func(p int) {
			if p/10 != last/10 || p == 100 {
				fmt.Fprintf(os.Stderr, "\ruploading... %3d%%", p)
			}
			last = p
		}),
	)
	session.SelectBus(*busID)

	var inputs []archive.File
	for _, p := range fs.Args() {
		f, err := archive.Load(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", p, err)
			continue
		}
		inputs = append(inputs, f)
	}
	for _, e := range session.AddFiles(inputs...) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Source, archive.ExtractFailedMessage)
	}

	queue := session.Queue()
	var total int64
	names := make([]string, len(queue))
	for i, f := range queue {
		total += f.Size()
		names[i] = f.Name
	}
	fmt.Fprintf(os.Stderr, "%d file(s), %s: %s\n", len(queue), humanize.Bytes(uint64(total)), strings.Join(names, ", "))

	resp, err := session.Upload(ctx)
	if last >= 0 {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, session.Message())
		if len(session.Queue()) > 0 {
			fmt.Fprintf(os.Stderr, "retry with: -batch %s\n", session.BatchKey())
		}
		return 1
	}

	fmt.Fprintln(os.Stderr, session.Message())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
	return 0
}

func defaultServer(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host
}
