package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"asset-aggregator/explorer"
	"asset-aggregator/model"
	"asset-aggregator/ratelimit"
	"asset-aggregator/service/enrich_service"
	"asset-aggregator/tool"
)

var (
	hashesFileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "file with one transaction hash per line",
	}
	explorerURLFlag = &cli.StringFlag{
		Name:  "explorer",
		Usage: "explorer base url, overrides config and env",
	}
	remoteFlag = &cli.StringFlag{
		Name:  "server",
		Usage: "send the batch to a running aggregator instead of calling the explorer directly",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "parallel explorer requests, 0 uses config",
	}
)

var enrichCommand = cli.Command{
	Name:      "enrich",
	Usage:     "Resolve sender and timestamp for transaction hashes",
	ArgsUsage: "[hash...]",
	Flags:     []cli.Flag{hashesFileFlag, explorerURLFlag, remoteFlag, workersFlag},
	Action:    enrichAction,
}

func enrichAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	hashes := ctx.Args().Slice()
	if path := ctx.String(hashesFileFlag.Name); path != "" {
		fromFile, err := readHashes(path)
		if err != nil {
			return err
		}
		hashes = append(hashes, fromFile...)
	}
	hashes = enrich_service.Dedupe(hashes)
	if len(hashes) == 0 {
		return fmt.Errorf("no transaction hashes given")
	}

	if server := ctx.String(remoteFlag.Name); server != "" {
		result, err := enrichRemote(ctx.Context, server, hashes)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	baseURL := cfg.Explorer.BaseUrl
	if u := ctx.String(explorerURLFlag.Name); u != "" {
		baseURL = u
	}
	if n := ctx.Int(workersFlag.Name); n > 0 {
		cfg.Enricher.Workers = n
	}
	// one-off batches from the cli may exceed the http endpoint's cap
	cfg.Enricher.MaxHashes = len(hashes)

	client := explorer.NewClient(baseURL, cfg.Explorer.ApiKey, cfg.Explorer.Timeout,
		ratelimit.NewLocal(cfg.Explorer.RateLimit, cfg.Explorer.RateBurst))
	enricher := enrich_service.NewEnricherFromConfig(client, cfg.Enricher)

	bar := progressbar.NewOptions(
		len(hashes),
		progressbar.OptionSetDescription("Enriching transactions"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("txs"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	result, err := enricher.EnrichWithProgress(ctx.Context, hashes, func(done, total int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func enrichRemote(ctx context.Context, server string, hashes []string) (map[string]model.TxnEnrichment, error) {
	target := strings.TrimRight(server, "/") + "/api/v1/transactions/enrich"
	body, err := tool.PostJSON(ctx, tool.NewClient(2*time.Minute), target, model.EnrichRequest{Hashes: hashes}, nil)
	if err != nil {
		return nil, err
	}
	var result map[string]model.TxnEnrichment
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode enrich response: %w", err)
	}
	return result, nil
}

func readHashes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var hashes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hashes = append(hashes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return hashes, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
