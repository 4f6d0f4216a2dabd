package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"asset-aggregator/model"
	"asset-aggregator/timeline"
	"asset-aggregator/tool"
)

var (
	serverFlag = &cli.StringFlag{
		Name:  "server",
		Usage: "aggregator base url",
		Value: "http://localhost:7290",
	}
	pagesFlag = &cli.IntFlag{
		Name:  "pages",
		Usage: "number of pages to load",
		Value: 1,
	}
	orderFlag = &cli.StringFlag{
		Name:  "order",
		Usage: "asc or desc",
		Value: model.SortOrderDesc,
	}
	collectionFlag = &cli.StringFlag{
		Name:  "collection",
		Usage: "collection name or contract",
	}
	searchFlag = &cli.StringFlag{
		Name:  "search",
		Usage: "filter loaded items by title, author, description, tags",
	}
	categoryFlag = &cli.StringSliceFlag{
		Name:  "category",
		Usage: "content type to keep, repeatable",
	}
)

var browseCommand = cli.Command{
	Name:   "browse",
	Usage:  "Page through a running aggregator's timeline",
	Flags:  []cli.Flag{serverFlag, pagesFlag, orderFlag, collectionFlag, searchFlag, categoryFlag},
	Action: browseAction,
}

func browseAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	settled := make(chan timeline.Snapshot, 1)
	filters := model.DefaultFilterState()
	filters.SortOrder = ctx.String(orderFlag.Name)
	filters.Collection = ctx.String(collectionFlag.Name)
	filters.Search = ctx.String(searchFlag.Name)
	filters.Categories = ctx.StringSlice(categoryFlag.Name)

	loaderCfg := timeline.ConfigFrom(cfg.Timeline)
	// a single operator drives this loader, no need to pace it
	loaderCfg.MinInterval = 0
	loader := timeline.NewLoader(
		timeline.NewRemoteFetcher(ctx.String(serverFlag.Name), tool.DefaultTimeout),
		loaderCfg,
		timeline.WithFilters(filters),
		timeline.WithOnChange(func(s timeline.Snapshot) {
			if s.Loading {
				return
			}
			select {
			case settled <- s:
			default:
			}
		}),
	)
	defer loader.Close()

	var snap timeline.Snapshot
	for page := 0; page < ctx.Int(pagesFlag.Name); page++ {
		if !loader.LoadMore() {
			break
		}
		select {
		case snap = <-settled:
		case <-ctx.Context.Done():
			return ctx.Context.Err()
		}
		if snap.State == timeline.StateError {
			return fmt.Errorf("load timeline: %s", snap.Error)
		}
		if !snap.HasMore {
			break
		}
	}
	snap = loader.Snapshot()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tCOLLECTION\tOWNER")
	for _, item := range snap.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Title, item.ContentType, item.Collection, item.Owner)
	}
	_ = w.Flush()

	fmt.Printf("\nloaded %d of %d, showing %d, ~%d creators", snap.Stats.RawCount, snap.Stats.TotalCount,
		snap.Stats.VisibleCount, snap.Stats.UniqueCreators)
	if len(snap.Stats.ContentTypes) > 0 {
		parts := make([]string, 0, len(snap.Stats.ContentTypes))
		for t, n := range snap.Stats.ContentTypes {
			parts = append(parts, fmt.Sprintf("%s=%d", t, n))
		}
		fmt.Printf(" (%s)", strings.Join(parts, ", "))
	}
	if snap.Warning != "" {
		fmt.Printf("\nwarning: %s", snap.Warning)
	}
	fmt.Println()
	return nil
}
