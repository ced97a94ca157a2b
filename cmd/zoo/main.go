// zoo: assemble a model from the zoo, print its layer summary and
// optionally run one forward pass on a random input.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ariann_lib/core/ckkswrapper"
	"ariann_lib/nn"
	"ariann_lib/nn/bench"
	"ariann_lib/nn/zoo"
	"ariann_lib/tensor"
	"ariann_lib/utils"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	modelName   = flag.String("model", "network2", "Model name (see -list)")
	dataset     = flag.String("dataset", "mnist", "Dataset: mnist, cifar10, tiny-imagenet")
	outFeatures = flag.Int("out", 10, "Number of output features")
	weightsFile = flag.String("weights", "", "Weights JSON file for the assembled model")
	pretrained  = flag.String("pretrained", "", "Stock-architecture weights JSON file")
	seed        = flag.Int64("seed", 1, "Seed for parameter initialization and the random input")
	run         = flag.Bool("run", false, "Run one forward pass on a random input")
	encrypted   = flag.Bool("encrypted", false, "Evaluate activations under CKKS")
	logN        = flag.Int("logN", ckkswrapper.DefaultLogN, "Ring dimension log2")
	topK        = flag.Int("topk", 3, "Top predictions to show")
	benchRuns   = flag.Int("bench", 0, "Time every layer over this many runs (0 disables)")
	csvFile     = flag.String("csv", "", "Write per-layer timings to this CSV file")
	list        = flag.Bool("list", false, "List registered models and exit")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	if *list {
		for _, name := range zoo.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg := &utils.Config{
		Model:       *modelName,
		Dataset:     *dataset,
		OutFeatures: *outFeatures,
		WeightsPath: *weightsFile,
		Seed:        *seed,
		Run:         *run,
		Encrypted:   *encrypted,
		LogN:        *logN,
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                  ARIANN model zoo                            ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	if err := runZoo(cfg, *pretrained); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runZoo(cfg *utils.Config, pretrainedPath string) error {
	stats := &utils.TimingStats{}
	start := time.Now()

	opts := []zoo.Option{zoo.WithSeed(cfg.Seed)}
	if pretrainedPath != "" {
		w, err := utils.LoadWeights(pretrainedPath)
		if err != nil {
			return err
		}
		opts = append(opts, zoo.WithPretrained(w))
	}
	if cfg.WeightsPath != "" {
		t := time.Now()
		w, err := utils.LoadWeights(cfg.WeightsPath)
		if err != nil {
			return err
		}
		stats.WeightLoadTime = time.Since(t)
		utils.Logf("Loaded %d layers from %s", len(w.Layers), cfg.WeightsPath)
		opts = append(opts, zoo.WithWeights(w))
	}

	t := time.Now()
	m, err := zoo.GetModel(cfg.Model, cfg.Dataset, cfg.OutFeatures, opts...)
	if err != nil {
		return err
	}
	stats.ModelInitTime = time.Since(t)

	summary, err := m.Summary()
	if err != nil {
		return err
	}
	fmt.Println()
	summary.Fprint(os.Stdout)
	if features, ok := m.Features(); ok && zoo.HasActivationBeforePool(features) {
		fmt.Println("warning: features still apply a ReLU before a max pool")
	}

	var heCtx *ckkswrapper.HeContext
	if cfg.Encrypted && (cfg.Run || *benchRuns > 0) {
		if heCtx, err = ckkswrapper.NewHeContextFromLogN(cfg.LogN); err != nil {
			return err
		}
		if err := m.EnableEncrypted(heCtx); err != nil {
			return err
		}
		utils.Logf("CKKS: logN=%d, %d slots, activations consume %d levels", cfg.LogN, heCtx.Params.MaxSlots(), m.Levels())
	}

	if cfg.Run {
		x := randomInput(m.InputShape, cfg.Seed)
		t = time.Now()
		out, err := m.Forward(x)
		if err != nil {
			return err
		}
		stats.ForwardPassTime = time.Since(t)
		if cfg.Encrypted {
			m.HEOps().Print("encrypted activations")
		}
		showResults(out.(*tensor.Tensor).Data, *topK)
	}

	if *benchRuns > 0 {
		if err := runBench(m, heCtx, cfg.Seed, *benchRuns, *csvFile); err != nil {
			return err
		}
	}

	stats.TotalTime = time.Since(start)
	utils.PrintTimingStats(stats)
	return nil
}

func runBench(m *zoo.Model, heCtx *ckkswrapper.HeContext, seed int64, runs int, csvPath string) error {
	fmt.Printf("\nTiming layers over %d runs...\n", runs)
	rows, err := bench.TimeLayers(m.Graph(), randomInput(m.InputShape, seed), runs)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("  %-28s fwd %10.1fus  bwd %10.1fus\n", r.Path, utils.DurationUS(r.Forward), utils.DurationUS(r.Backward))
	}
	if csvPath == "" {
		return nil
	}
	if err := bench.WriteCSVFile(csvPath, m.Name, rows, bench.CKKSParamsSummary(heCtx)); err != nil {
		return err
	}
	utils.Logf("Wrote %s", csvPath)
	return nil
}

func randomInput(shape []int, seed int64) *tensor.Tensor {
	x := tensor.New(shape...)
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))}
	for i := range x.Data {
		x.Data[i] = dist.Rand()
	}
	return x
}

func showResults(predictions []float64, k int) {
	probs := nn.Softmax(tensor.NewWithData(predictions))
	fmt.Printf("\nTop %d predictions:\n", k)
	for i, idx := range nn.TopK(predictions, k) {
		fmt.Printf("  %d. Class %d: %.4f\n", i+1, idx, probs.Data[idx])
	}
}
