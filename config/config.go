// Package config is this core's top-level, file-loadable configuration:
// every tunable spec.md §6 names across QRM, QVM, APQC, the sequencer, and
// the protocol-stack controller, collected into one struct with JSON tags
// (for programmatic construction) and a TOML file loader (for operator
// config files). Grounded on params.PostQuantumConfig's struct-of-tunables
// shape and common/gpu.GPUConfig + DefaultGPUConfig()'s
// constructor-returns-populated-defaults convention.
package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// QRMConfig mirrors qrm.Config's tunables (spec.md §6).
type QRMConfig struct {
	WindowSize         int    `json:"window_size" toml:"window_size"`
	ThresholdScheduled uint32 `json:"risk_threshold_scheduled" toml:"risk_threshold_scheduled"`
	ThresholdEmergency uint32 `json:"risk_threshold_emergency" toml:"risk_threshold_emergency"`
}

// QVMConfig mirrors qvm.Config's tunables plus the processor-profile
// selector (spec.md §6 processor_profile option).
type QVMConfig struct {
	ProcessorProfile           string  `json:"processor_profile" toml:"processor_profile"`
	AssessmentIntervalBlocks   int     `json:"assessment_interval_blocks" toml:"assessment_interval_blocks"`
	HorizonYears               float64 `json:"horizon_years" toml:"horizon_years"`
	AutoEraTransition          bool    `json:"auto_era_transition" toml:"auto_era_transition"`
	RiskThresholdNISQ          uint32  `json:"risk_threshold_nisq" toml:"risk_threshold_nisq"`
	RiskThresholdFaultTolerant uint32  `json:"risk_threshold_fault_tolerant" toml:"risk_threshold_fault_tolerant"`
}

// APQCConfig mirrors apqc.Config's tunables.
type APQCConfig struct {
	GraceBlocks  uint64 `json:"rotation_grace_blocks" toml:"rotation_grace_blocks"`
	IncludeECDSA bool   `json:"include_ecdsa" toml:"include_ecdsa"`
}

// SequencerConfig mirrors sequencer.Config's tunables.
type SequencerConfig struct {
	MempoolCapacity     int    `json:"mempool_capacity" toml:"mempool_capacity"`
	BatchSizeMin        int    `json:"batch_size_min" toml:"batch_size_min"`
	BatchSizeMax        int    `json:"batch_size_max" toml:"batch_size_max"`
	IntelligenceMode    string `json:"intelligence_mode" toml:"intelligence_mode"`
	RedundancyEnabled   bool   `json:"redundancy_enabled" toml:"redundancy_enabled"`
	RedundancyRequired  bool   `json:"redundancy_required" toml:"redundancy_required"`
	DecryptWorkers      int    `json:"decrypt_workers" toml:"decrypt_workers"`
}

// TEEConfig mirrors spec.md §6's tee.quote_type option.
type TEEConfig struct {
	QuoteType string `json:"quote_type" toml:"quote_type"`
}

// StackConfig mirrors stack.Config's tunables.
type StackConfig struct {
	BatchIntervalBlocks int `json:"batch_interval_blocks" toml:"batch_interval_blocks"`
}

// Config is this core's complete, file-loadable configuration.
type Config struct {
	QRM       QRMConfig       `json:"qrm" toml:"qrm"`
	QVM       QVMConfig       `json:"qvm" toml:"qvm"`
	APQC      APQCConfig      `json:"apqc" toml:"apqc"`
	Sequencer SequencerConfig `json:"sequencer" toml:"sequencer"`
	TEE       TEEConfig       `json:"tee" toml:"tee"`
	Stack     StackConfig     `json:"stack" toml:"stack"`
}

// DefaultConfig returns a fully populated Config matching every default
// spec.md §6 documents, mirroring DefaultGPUConfig's
// returns-a-populated-struct convention rather than relying on Go
// zero-values.
func DefaultConfig() Config {
	return Config{
		QRM: QRMConfig{
			WindowSize:         50,
			ThresholdScheduled: 6000,
			ThresholdEmergency: 9000,
		},
		QVM: QVMConfig{
			ProcessorProfile:           "willow_pink",
			AssessmentIntervalBlocks:   100,
			HorizonYears:               100.0,
			AutoEraTransition:          true,
			RiskThresholdNISQ:          4000,
			RiskThresholdFaultTolerant: 7000,
		},
		APQC: APQCConfig{
			GraceBlocks:  1000,
			IncludeECDSA: true,
		},
		Sequencer: SequencerConfig{
			MempoolCapacity:    10000,
			BatchSizeMin:       10,
			BatchSizeMax:       50,
			IntelligenceMode:   "hybrid",
			RedundancyEnabled:  false,
			RedundancyRequired: false,
			DecryptWorkers:     8,
		},
		TEE: TEEConfig{
			QuoteType: "tdx",
		},
		Stack: StackConfig{
			BatchIntervalBlocks: 1,
		},
	}
}

// tomlSettings matches go-ethereum's own cmd/geth/config.go convention of
// a package-level toml.Config with field-name normalization disabled, so
// struct tags are the single source of truth for key names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// LoadFile reads and decodes a TOML config file, starting from
// DefaultConfig so that fields absent from the file keep their default
// value rather than zeroing out.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %v", path, err)
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %v", path, err)
	}
	return cfg, nil
}
