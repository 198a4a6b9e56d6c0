// The hardware-exporter daemon collects health telemetry from vendor
// hardware diagnostic tools and serves it on a Prometheus scrape endpoint.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/common/version"

	"github.com/hardware-observer/hardware-exporter/cmd/hardware-exporter/collectors"
	"github.com/hardware-observer/hardware-exporter/cmd/hardware-exporter/conf"
	"github.com/hardware-observer/hardware-exporter/exporter"
	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/rules"
	"github.com/hardware-observer/hardware-exporter/slog"
	"github.com/hardware-observer/hardware-exporter/util"
)

var (
	flagConf    = flag.String("conf", "", "Path to the TOML config file. Defaults apply if empty.")
	flagFilter  = flag.String("f", "", "Filters collectors matching this term. Works with all other arguments.")
	flagTest    = flag.Bool("test", false, "Test - run collectors once, print, and exit.")
	flagList    = flag.Bool("list", false, "List available collectors and exit.")
	flagRules   = flag.Bool("validate-rules", false, "Validate the alert rule files in the configured rules dir and exit.")
	flagVersion = flag.Bool("version", false, "Print version and exit.")
)

func main() {
	flag.Parse()
	if *flagVersion {
		fmt.Println(version.Print("hardware_exporter"))
		os.Exit(0)
	}

	c, err := conf.Load(*flagConf)
	if err != nil {
		slog.Fatalf("loading config: %v", err)
	}
	level, err := slog.ParseLevel(c.Level)
	if err != nil {
		slog.Fatal(err)
	}
	slog.SetLevel(level)
	if err := util.InitHostname(c.Hostname); err != nil {
		slog.Fatalf("resolving hostname: %v", err)
	}
	util.DefaultTimeout = time.Duration(c.CollectTimeout) * time.Second
	collectors.DefaultFreq = time.Duration(c.Freq) * time.Second
	collectors.AddTags = c.Tags

	if *flagRules {
		if err := rules.ValidateDir(c.RulesDir); err != nil {
			slog.Fatal(err)
		}
		fmt.Println("rules ok")
		os.Exit(0)
	}

	if c.Redfish.Host != "" {
		collectors.SetRedfish(c.Redfish.Host, c.Redfish.Username, c.Redfish.Password)
	}
	locator := hwtool.NewLocator(hwtool.Config{
		ToolsDir:    c.ToolsDir,
		ResourceDir: c.ResourceDir,
		Redfish:     c.Redfish.Host != "",
	})
	if err := locator.Detect(); err != nil {
		slog.Fatalf("tool detection: %v", err)
	}
	collectors.SetLocator(locator)
	collectors.Force(c.Collectors)

	terms := append([]string{}, c.Collectors...)
	terms = append(terms, c.Filter...)
	if *flagFilter != "" {
		terms = append(terms, *flagFilter)
	}
	cs := collectors.Search(terms)
	if len(cs) == 0 {
		slog.Fatal("no collectors matching filter")
	}

	if *flagList {
		for _, col := range cs {
			fmt.Println(col.Name())
		}
		os.Exit(0)
	}
	if *flagTest {
		test(cs)
		os.Exit(0)
	}

	ch, quit := collectors.Run(cs)
	e := exporter.New(3 * collectors.DefaultFreq)
	e.Healthy = func() bool { return collectors.Healthy(cs) }
	go e.Listen(ch)
	go func() {
		if err := locator.Watch(nil, quit); err != nil {
			slog.Errorf("resource watch: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		slog.Infof("got signal %v, shutting down", s)
		close(quit)
		os.Exit(0)
	}()

	slog.Fatal(e.Serve(c.Port))
}

func test(cs []collectors.Collector) {
	ch, quit := collectors.Run(cs)
	defer close(quit)
	next := time.After(time.Second * 2)
	for {
		select {
		case r := <-ch:
			printRecord(r)
		case <-next:
			return
		}
	}
}

func printRecord(r *metric.Record) {
	fmt.Printf("%s %v\n", r.Key(), r.Value)
}
