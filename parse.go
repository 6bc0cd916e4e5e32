package dudect

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

type options struct {
	options []ConfigOption
	crops   []CropPolicy
	orders  []int
	err     error
}

// all returns the collected options.  Crop and order values from every source are combined into a
// single option each.
func (o *options) all() []ConfigOption {
	out := append([]ConfigOption{}, o.options...)
	if len(o.crops) > 0 {
		out = append(out, Crops(o.crops...))
	}
	if len(o.orders) > 0 {
		out = append(out, Orders(o.orders...))
	}
	return out
}

// ParseCommandLine configures a session from command line options or from a YAML configuration file
// passed with the -c flag.  Returns the remaining arguments and a slice of functional options that can
// be applied to the configuration.
func ParseCommandLine() ([]string, []ConfigOption, error) {
	pf := FlagSet()
	return parse(os.Args[1:], pf)
}

func parse(args []string, pf *pflag.FlagSet) ([]string, []ConfigOption, error) {
	o := options{}
	if err := pf.ParseAll(args, parseFlag(&o)); err != nil {
		return pf.Args(), o.all(), err
	}
	return pf.Args(), o.all(), o.err
}

// FlagSet returns the flags understood by ParseCommandLine and OptionsFromFlags
func FlagSet() *pflag.FlagSet {
	pf := pflag.NewFlagSet("dudect", pflag.ContinueOnError)
	pf.Usage = func() {
		fmt.Printf("Usage of dudect:\n\n%s", pf.FlagUsagesWrapped(10))
	}

	pf.StringP("config", "c", "", "Use yaml configuration file")
	pf.Int("block-len", 0, "Length of every input block in bytes.  Defaults to the length the specimen reports.")
	pf.Int("max-rounds", DefaultMaxRounds, "Rounds to measure before giving up without detecting leakage")
	pf.Int("batch-size", DefaultBatchSize, "Measurements per round, half fixed and half random.  Must be even.")
	pf.Float64Slice("crop", nil, "Crop percentiles in (0, 100], repeatable.  100 keeps every measurement.  Defaults to 100 and a ten step ladder.")
	pf.IntSlice("order", nil, "Moment orders to test, repeatable (default 1,2)")
	pf.Float64("threshold", DefaultThreshold, "A cell with |t| above this value means leakage was detected")
	pf.Float64("overwhelming", DefaultOverwhelming, "|t| above which leakage is reported as definite")
	pf.Int("warmup", 0, "Rounds to measure and discard before collecting statistics")
	pf.Int("discard", 0, "Measurements at the start of every batch to leave out of the statistics (dudect uses 10)")
	pf.Int("min-samples", 0, "Samples the winning cell needs before leakage can be reported")
	pf.Int64("seed", 0, "Seed for the class schedule.  0 derives one from the clock.")
	pf.Int("history", DefaultHistory, "Number of per round max |t| values to retain")

	return pf
}

// OptionsFromFlags returns options for the flags of FlagSet that were set on an already parsed flag
// set, such as one owned by a cobra command.  Flags that FlagSet does not define are ignored.
func OptionsFromFlags(pf *pflag.FlagSet) ([]ConfigOption, error) {
	o := options{}
	known := FlagSet()

	if f := pf.Lookup("config"); f != nil && f.Changed {
		if err := o.fromFile(f.Value.String()); err != nil {
			return nil, err
		}
	}
	pf.Visit(func(f *pflag.Flag) {
		if o.err != nil || f.Name == "config" || known.Lookup(f.Name) == nil {
			return
		}
		values := []string{f.Value.String()}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			values = sv.GetSlice()
		}
		for _, v := range values {
			if err := o.handle(f.Name, v); err != nil {
				o.err = err
				return
			}
		}
	})
	if o.err != nil {
		return nil, o.err
	}
	return o.all(), nil
}

func parseFlag(o *options) func(*pflag.Flag, string) error {
	return func(flag *pflag.Flag, value string) error {
		var err error
		switch flag.Name {
		case "config":
			err = o.fromFile(value)
		default:
			for _, v := range strings.Split(value, ",") {
				if err = o.handle(flag.Name, strings.TrimSpace(v)); err != nil {
					break
				}
			}
		}
		if err != nil {
			o.err = err
		}
		return err
	}
}

func (o *options) handle(name string, value string) error {
	switch name {
	case "crop":
		p, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("could not convert crop %q to a percentile", value)
		}
		o.crops = append(o.crops, CropPolicy(p))
		return nil
	case "order":
		k, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("could not convert order %q to an integer", value)
		}
		o.orders = append(o.orders, k)
		return nil
	}
	option, err := handleOption(name, value)
	if err != nil {
		return err
	}
	o.options = append(o.options, option)
	return nil
}

func handleOption(name string, value string) (ConfigOption, error) {
	switch name {
	case "block-len":
		return intOption(name, value, BlockLen)
	case "max-rounds":
		return intOption(name, value, MaxRounds)
	case "batch-size":
		return intOption(name, value, BatchSize)
	case "warmup":
		return intOption(name, value, Warmup)
	case "discard":
		return intOption(name, value, Discard)
	case "min-samples":
		return intOption(name, value, MinSamples)
	case "history":
		return intOption(name, value, History)
	case "threshold":
		return floatOption(name, value, Threshold)
	case "overwhelming":
		return floatOption(name, value, Overwhelming)
	case "seed":
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not convert seed %q to an integer", value)
		}
		return Seed(seed), nil
	default:
		return nil, fmt.Errorf("unknown option: %s", name)
	}
}

func intOption(name string, value string, f func(int) ConfigOption) (ConfigOption, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("could not convert %s %q to an integer", name, value)
	}
	return f(i), nil
}

func floatOption(name string, value string, f func(float64) ConfigOption) (ConfigOption, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("could not convert %s %q to a number", name, value)
	}
	return f(v), nil
}

func (o *options) fromFile(fpath string) error {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return err
	}

	cfg := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	for k, v := range cfg {
		if k == "config" {
			return fmt.Errorf("config files cannot include other config files")
		}
		values, err := yamlValues(k, v)
		if err != nil {
			return err
		}
		if len(values) > 1 && k != "crop" && k != "order" {
			return fmt.Errorf("config key %s takes a single value", k)
		}
		for _, val := range values {
			if err := o.handle(k, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func yamlValues(key string, v interface{}) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case int:
		return []string{strconv.Itoa(t)}, nil
	case int64:
		return []string{strconv.FormatInt(t, 10)}, nil
	case float64:
		return []string{strconv.FormatFloat(t, 'g', -1, 64)}, nil
	case []interface{}:
		var out []string
		for _, item := range t {
			if _, nested := item.([]interface{}); nested {
				return nil, fmt.Errorf("could not process config key %s, nested lists are not supported", key)
			}
			vals, err := yamlValues(key, item)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("could not process config key %s, unknown type", key)
	}
}
