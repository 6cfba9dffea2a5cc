package dagconfig

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

func TestParamsAreConsistent(t *testing.T) {
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &DevnetParams, &SimnetParams} {
		if err := params.Validate(); err != nil {
			t.Fatalf("Validate: %s", err)
		}
		if !consensushashing.BlockHash(params.GenesisBlock).Equal(params.GenesisHash) {
			t.Fatalf("%s: the genesis hash does not match the genesis block", params.Name)
		}
		if params.GenesisBlock.Header.Difficulty.Cmp(params.InitialDifficulty) != 0 {
			t.Fatalf("%s: the genesis difficulty is not the initial difficulty", params.Name)
		}
	}
}

func TestParamsByName(t *testing.T) {
	params, err := ParamsByName(DevnetParams.Name)
	if err != nil {
		t.Fatalf("ParamsByName: %s", err)
	}
	if params != &DevnetParams {
		t.Fatalf("ParamsByName returned the wrong network")
	}
	if _, err := ParamsByName("no-such-network"); !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}
}

func TestGenesisHashesAreDistinct(t *testing.T) {
	seen := make(map[string]string)
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &DevnetParams, &SimnetParams} {
		if other, ok := seen[params.GenesisHash.String()]; ok {
			t.Fatalf("%s and %s share a genesis hash", params.Name, other)
		}
		seen[params.GenesisHash.String()] = params.Name
	}
}

func TestValidateRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"zero adjustment factor", func(p *Params) { p.DifficultyAdjustmentFactor = 0 }},
		{"negative adjustment factor", func(p *Params) { p.DifficultyAdjustmentFactor = -4 }},
		{"zero adjustment period", func(p *Params) { p.DifficultyAdjustmentEpochPeriod = 0 }},
		{"no executed blocks per epoch", func(p *Params) { p.MaxExecutedBlocksPerEpoch = 0 }},
		{"zero era length", func(p *Params) { p.EraEpochCount = 0 }},
	}
	for _, test := range tests {
		params := SimnetParams
		test.modify(&params)
		if err := params.Validate(); err == nil {
			t.Fatalf("%s: expected Validate to fail", test.name)
		}
	}
}
