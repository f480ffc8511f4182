// Package adapters provides the concrete ports implementations: a
// go-eth2-client-backed ConsensusClient, a go-ethereum-backed
// ExecutionClient/ContractClient/Signer, and a file-based RootPersister.
// Each is a thin struct wrapping one SDK client, with its endpoint
// configured once at construction time.
package adapters

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/attestantio/go-eth2-client/api"
	eth2http "github.com/attestantio/go-eth2-client/http"
	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/rs/zerolog"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

// consensusHTTPClient implements ports.ConsensusClient against a single
// beacon-node endpoint. internal/beacon.Reader owns retry/failover across a
// list of these.
type consensusHTTPClient struct {
	client *eth2http.Service
}

// NewConsensusHTTPAdapter dials a single beacon-node endpoint.
func NewConsensusHTTPAdapter(ctx context.Context, endpoint string, timeout time.Duration) (ports.ConsensusClient, error) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	httpClient := &nethttp.Client{Timeout: timeout * 10}
	client, err := eth2http.New(ctx,
		eth2http.WithAddress(endpoint),
		eth2http.WithHTTPClient(httpClient),
		eth2http.WithTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}
	return &consensusHTTPClient{client: client.(*eth2http.Service)}, nil
}

func stateIDToBlockParameter(id ports.StateID) string {
	switch {
	case id.Tag != "":
		return id.Tag
	case id.Slot != nil:
		return fmt.Sprintf("%d", *id.Slot)
	case id.Root != nil:
		return fmt.Sprintf("0x%x", *id.Root)
	default:
		return "head"
	}
}

func (c *consensusHTTPClient) GetBeaconHeader(ctx context.Context, id ports.StateID) (domain.BeaconBlockHeader, error) {
	resp, err := c.client.BeaconBlockHeader(ctx, &api.BeaconBlockHeaderOpts{Block: stateIDToBlockParameter(id)})
	if err != nil {
		return domain.BeaconBlockHeader{}, err
	}
	msg := resp.Data.Header.Message
	return domain.BeaconBlockHeader{
		Slot:          domain.Slot(msg.Slot),
		ProposerIndex: domain.ValidatorIndex(msg.ProposerIndex),
		ParentRoot:    domain.Root(msg.ParentRoot),
		StateRoot:     domain.Root(msg.StateRoot),
		BodyRoot:      domain.Root(msg.BodyRoot),
	}, nil
}

func (c *consensusHTTPClient) GetBlockInfo(ctx context.Context, id ports.StateID) (ports.BlockInfo, error) {
	resp, err := c.client.SignedBeaconBlock(ctx, &api.SignedBeaconBlockOpts{Block: stateIDToBlockParameter(id)})
	if err != nil {
		return ports.BlockInfo{}, err
	}
	slot, hash, number, err := executionPayloadInfo(resp.Data)
	if err != nil {
		return ports.BlockInfo{}, err
	}
	return ports.BlockInfo{
		Slot:                 domain.Slot(slot),
		ExecutionBlockHash:   hash,
		ExecutionBlockNumber: number,
	}, nil
}

// executionPayloadInfo extracts the fields the prover needs from whichever
// fork-specific block the beacon node returned (spec.md §4.1 fork support).
func executionPayloadInfo(block *spec.VersionedSignedBeaconBlock) (phase0.Slot, [32]byte, uint64, error) {
	switch block.Version {
	case spec.DataVersionCapella:
		m := block.Capella.Message
		return m.Slot, [32]byte(m.Body.ExecutionPayload.BlockHash), m.Body.ExecutionPayload.BlockNumber, nil
	case spec.DataVersionDeneb:
		m := block.Deneb.Message
		return m.Slot, [32]byte(m.Body.ExecutionPayload.BlockHash), m.Body.ExecutionPayload.BlockNumber, nil
	case spec.DataVersionElectra:
		m := block.Electra.Message
		return m.Slot, [32]byte(m.Body.ExecutionPayload.BlockHash), m.Body.ExecutionPayload.BlockNumber, nil
	default:
		return 0, [32]byte{}, 0, fmt.Errorf("unsupported beacon block version %v", block.Version)
	}
}

func (c *consensusHTTPClient) GetState(ctx context.Context, id ports.StateID) (ports.RawState, error) {
	resp, err := c.client.BeaconState(ctx, &api.BeaconStateOpts{State: stateIDToBlockParameter(id)})
	if err != nil {
		return ports.RawState{}, err
	}
	fork, err := forkNameFromVersion(resp.Data.Version)
	if err != nil {
		return ports.RawState{}, err
	}
	bytes, err := rawStateBytes(resp.Data)
	if err != nil {
		return ports.RawState{}, err
	}
	return ports.RawState{Bytes: bytes, Fork: fork}, nil
}

func forkNameFromVersion(v spec.DataVersion) (ports.ForkName, error) {
	switch v {
	case spec.DataVersionCapella:
		return ports.ForkCapella, nil
	case spec.DataVersionDeneb:
		return ports.ForkDeneb, nil
	case spec.DataVersionElectra:
		return ports.ForkElectra, nil
	default:
		return "", fmt.Errorf("unsupported state version %v", v)
	}
}

func rawStateBytes(state *spec.VersionedBeaconState) ([]byte, error) {
	switch state.Version {
	case spec.DataVersionCapella:
		return state.Capella.MarshalSSZ()
	case spec.DataVersionDeneb:
		return state.Deneb.MarshalSSZ()
	case spec.DataVersionElectra:
		return state.Electra.MarshalSSZ()
	default:
		return nil, fmt.Errorf("unsupported state version %v", state.Version)
	}
}

func (c *consensusHTTPClient) GetGenesis(ctx context.Context) (ports.GenesisInfo, error) {
	resp, err := c.client.Genesis(ctx, &api.GenesisOpts{})
	if err != nil {
		return ports.GenesisInfo{}, err
	}
	return ports.GenesisInfo{
		GenesisTime:           domain.Timestamp(resp.Data.GenesisTime.Unix()),
		GenesisValidatorsRoot: domain.Root(resp.Data.GenesisValidatorsRoot),
	}, nil
}

func (c *consensusHTTPClient) GetConfig(ctx context.Context) (domain.BeaconConfig, error) {
	resp, err := c.client.Spec(ctx, &api.SpecOpts{})
	if err != nil {
		return domain.BeaconConfig{}, err
	}

	cfg := domain.BeaconConfig{}
	if v, ok := resp.Data["SECONDS_PER_SLOT"].(time.Duration); ok {
		cfg.SecondsPerSlot = uint64(v.Seconds())
	}
	if v, ok := resp.Data["SLOTS_PER_EPOCH"].(uint64); ok {
		cfg.SlotsPerEpoch = v
	}
	if v, ok := resp.Data["SLOTS_PER_HISTORICAL_ROOT"].(uint64); ok {
		cfg.SlotsPerHistoricalRoot = v
	}
	if v, ok := resp.Data["CAPELLA_FORK_EPOCH"].(uint64); ok {
		cfg.CapellaForkEpoch = domain.Epoch(v)
	}

	genesis, err := c.GetGenesis(ctx)
	if err != nil {
		return domain.BeaconConfig{}, err
	}
	cfg.GenesisTime = genesis.GenesisTime
	return cfg, nil
}
