// evolution-tracker loads the four historical datasets, runs the growth,
// Moore's Law and cloud cost analyses, and exports the results.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/cloudcost"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/config"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/dataset"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/export"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/growth"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/moore"
)

func main() {
	// Optional .env for local runs; absence is fine.
	if err := godotenv.Load(); err == nil {
		klog.V(2).InfoS("Loaded environment from .env")
	}

	var (
		dataDir      = flag.String("data-dir", "", "Directory holding the dataset files (overrides DATA_DIR)")
		outputDir    = flag.String("output-dir", "", "Directory for exported reports (overrides OUTPUT_DIR)")
		reports      = flag.String("reports", "all", "Comma-separated reports to run: growth, moore, cloud (or all)")
		format       = flag.String("format", "json", "Export format: json, csv or markdown")
		predictYears = flag.Int("predict-years", 10, "Years ahead for Moore's Law predictions")
		paramsB      = flag.Float64("params-billions", 70, "Model size for the training cost report, in billions of parameters")
		tokensB      = flag.Float64("tokens-billions", 1400, "Training tokens for the training cost report, in billions")
		useSpot      = flag.Bool("use-spot", true, "Use spot pricing for the training cost report")
	)
	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		klog.ErrorS(err, "Failed to load configuration")
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if cfg.Observability.MetricsEnabled {
		go serveMetrics(cfg.Observability.MetricsPort)
	}

	ds, err := dataset.LoadAll(cfg.DataDir)
	if err != nil {
		klog.ErrorS(err, "Failed to load datasets", "dataDir", cfg.DataDir)
		os.Exit(1)
	}
	klog.InfoS("Datasets loaded", "hardware", len(ds.Hardware), "gpus", len(ds.GPUs),
		"llms", len(ds.LLMs), "instances", len(ds.Instances), "warnings", len(ds.Warnings))

	exporter, err := export.New(cfg.OutputDir)
	if err != nil {
		klog.ErrorS(err, "Failed to create exporter")
		os.Exit(1)
	}

	selected := map[string]bool{}
	for _, r := range strings.Split(*reports, ",") {
		selected[strings.TrimSpace(r)] = true
	}
	runAll := selected["all"]

	if runAll || selected["growth"] {
		if err := runGrowthReport(cfg, ds, exporter, *format); err != nil {
			klog.ErrorS(err, "Growth report failed")
			os.Exit(1)
		}
	}
	if runAll || selected["moore"] {
		if err := runMooreReport(cfg, ds, exporter, *format, *predictYears); err != nil {
			klog.ErrorS(err, "Moore's Law report failed")
			os.Exit(1)
		}
	}
	if runAll || selected["cloud"] {
		if err := runCloudReport(cfg, ds, exporter, *format, *paramsB, *tokensB, *useSpot); err != nil {
			klog.ErrorS(err, "Cloud cost report failed")
			os.Exit(1)
		}
	}
}

func serveMetrics(port int) {
	http.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	klog.InfoS("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		klog.ErrorS(err, "Metrics server failed")
	}
}

// exportRows writes rows in the chosen format under the given base name.
func exportRows(exporter *export.Exporter, rows []export.Row, baseName, title, format string) error {
	var err error
	switch format {
	case "csv":
		_, err = exporter.CSV(rows, baseName+".csv")
	case "markdown":
		_, err = exporter.Markdown(rows, baseName+".md", title)
	default:
		_, err = exporter.JSON(rows, baseName+".json")
	}
	return err
}

func runGrowthReport(cfg *config.Config, ds *dataset.Datasets, exporter *export.Exporter, format string) error {
	analyzer := &growth.Analyzer{AnomalousCAGRPercent: cfg.Analysis.AnomalousCAGRPercent}

	var rows []export.Row
	for datasetName, batch := range map[string]map[string]growth.GrowthResult{
		"hardware": analyzer.AnalyzeAll(dataset.HardwareSeries(ds.Hardware)),
		"gpu":      analyzer.AnalyzeAll(dataset.GPUSeries(ds.GPUs)),
		"llm":      analyzer.AnalyzeAll(dataset.LLMSeries(ds.LLMs)),
		"cloud":    analyzer.AnalyzeAll(dataset.CloudSeries(ds.Instances)),
	} {
		for _, result := range batch {
			rows = append(rows, export.Row{
				"dataset":       datasetName,
				"metric_name":   result.MetricName,
				"start_year":    result.StartYear,
				"end_year":      result.EndYear,
				"start_value":   result.StartValue,
				"end_value":     result.EndValue,
				"years_elapsed": result.YearsElapsed,
				"cagr_percent":  result.CAGRPercent,
				"growth_factor": result.GrowthFactor,
				"computed":      result.Computed(),
				"anomalous":     analyzer.Anomalous(result),
			})
		}
	}
	return exportRows(exporter, rows, "growth_report", "Growth Analysis", format)
}

func runMooreReport(cfg *config.Config, ds *dataset.Datasets, exporter *export.Exporter, format string, predictYears int) error {
	predictor, err := moore.New(cfg.Moore)
	if err != nil {
		return err
	}
	if len(ds.Hardware) == 0 {
		return fmt.Errorf("no hardware systems to predict from")
	}

	base := moore.BaseFromSystem(&ds.Hardware[len(ds.Hardware)-1])
	predictions := predictor.PredictRange(base, predictYears)
	rows, err := export.Rows(predictions)
	if err != nil {
		return err
	}
	if err := exportRows(exporter, rows, "moore_predictions", "Moore's Law Predictions", format); err != nil {
		return err
	}

	if adherence := predictor.HistoricalAdherence(ds.Hardware); len(adherence) > 0 {
		rows, err := export.Rows(adherence)
		if err != nil {
			return err
		}
		if err := exportRows(exporter, rows, "moore_adherence", "Moore's Law Historical Adherence", format); err != nil {
			return err
		}
	}

	if trends := predictor.EraTrends(ds.Hardware, cfg.Analysis.EraLengthYears); len(trends) > 0 {
		rows, err := export.Rows(trends)
		if err != nil {
			return err
		}
		if err := exportRows(exporter, rows, "moore_eras", "Moore's Law Era Trends", format); err != nil {
			return err
		}
	}
	return nil
}

func runCloudReport(cfg *config.Config, ds *dataset.Datasets, exporter *export.Exporter, format string, paramsB, tokensB float64, useSpot bool) error {
	engine, err := cloudcost.NewEngine(ds.Instances, cfg.CostModel)
	if err != nil {
		return err
	}

	estimate, err := engine.EstimateTrainingCost(paramsB, tokensB, useSpot)
	if err != nil {
		return fmt.Errorf("training estimate failed: %w", err)
	}
	klog.InfoS("Training estimate", "provider", estimate.Provider, "instanceType", estimate.InstanceType,
		"hours", estimate.TrainingHours, "costUSD", estimate.TotalCostUSD, "pricing", estimate.PricingModel)
	if _, err := exporter.JSON(estimate, "training_estimate.json"); err != nil {
		return err
	}

	comparison, err := engine.CompareProvidersForTraining(paramsB, tokensB, useSpot)
	if err != nil {
		return err
	}
	if _, err := exporter.JSON(comparison, "provider_comparison.json"); err != nil {
		return err
	}

	ranking, err := engine.RankCostEfficiency("training")
	if err != nil {
		return err
	}
	rows, err := export.Rows(ranking)
	if err != nil {
		return err
	}
	if err := exportRows(exporter, rows, "cost_efficiency", "Cost Efficiency Ranking", format); err != nil {
		return err
	}

	if savings := engine.SpotSavingsAnalysis(); len(savings) > 0 {
		rows, err := export.Rows(savings)
		if err != nil {
			return err
		}
		if err := exportRows(exporter, rows, "spot_savings", "Spot Savings Analysis", format); err != nil {
			return err
		}
	}

	return exportRows(exporter, summaryRows(engine), "cloud_summary", "Cloud Catalog Summary", format)
}

func summaryRows(engine *cloudcost.Engine) []export.Row {
	stats := engine.SummaryStatistics()
	return []export.Row{{
		"total_instances":     stats.TotalInstances,
		"providers":           strings.Join(stats.Providers, ", "),
		"gpu_models":          strings.Join(stats.GPUModels, ", "),
		"training_instances":  stats.TrainingInstances,
		"inference_instances": stats.InferenceInstances,
		"min_hourly":          stats.MinHourly,
		"max_hourly":          stats.MaxHourly,
		"avg_hourly":          stats.AvgHourly,
		"year_range":          stats.YearRange,
	}}
}
