package deadline

import (
	"context"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

// BuildRegistryTable constructs the moduleId -> registryClient dispatch
// table from the staking router's module list at startup (spec.md §4.4,
// §9). An unknown moduleId encountered later is a fatal configuration
// mismatch; this function itself cannot fail that way because it only
// consumes modules the router itself reports.
func BuildRegistryTable(ctx context.Context, contracts ports.ContractClient) (map[domain.ModuleID]ports.NodeOperatorRegistry, error) {
	modules, err := contracts.StakingModules(ctx)
	if err != nil {
		return nil, err
	}
	table := make(map[domain.ModuleID]ports.NodeOperatorRegistry, len(modules))
	for _, m := range modules {
		table[m.ModuleID] = contracts.NodeOperatorRegistry(m)
	}
	return table, nil
}
