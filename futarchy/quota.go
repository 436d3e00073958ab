package futarchy

import (
	"encoding/json"
	"fmt"

	"futarchy/native/common"
	"futarchy/store"
)

// kvQuotaStore implements native/common.Store over the façade's backing
// store.KV, scoping counters to a "quota" bucket keyed by
// module/epoch/address. Adapted from native/common's Store contract so
// the same CheckQuota/Apply machinery the teacher uses for request
// throttling also guards proposal creation spam here.
type kvQuotaStore struct {
	kv store.KV
}

func quotaKey(module string, epoch uint64, addr []byte) []byte {
	return []byte(fmt.Sprintf("%s/%d/%x", module, epoch, addr))
}

func (s kvQuotaStore) Load(module string, epoch uint64, addr []byte) (common.QuotaNow, bool, error) {
	raw, ok, err := s.kv.Get("quota", quotaKey(module, epoch, addr))
	if err != nil || !ok {
		return common.QuotaNow{}, ok, err
	}
	var q common.QuotaNow
	if err := json.Unmarshal(raw, &q); err != nil {
		return common.QuotaNow{}, false, err
	}
	return q, true, nil
}

func (s kvQuotaStore) Save(module string, epoch uint64, addr []byte, counters common.QuotaNow) error {
	raw, err := json.Marshal(counters)
	if err != nil {
		return err
	}
	return s.kv.Put("quota", quotaKey(module, epoch, addr), raw)
}

// proposalQuota bounds how many proposals a single proposer may create
// per epoch, independent of the proposal fee (spec.md §6's
// proposal_fee_per_outcome deters cost, this bounds raw request volume).
// A zero value disables the bound.
var proposalQuota = common.Quota{MaxRequestsPerMin: 20, EpochSeconds: 60}

// checkProposalQuota applies the proposer's per-epoch proposal creation
// quota, returning common.ErrQuotaRequestsExceeded if exceeded.
func (f *Facade) checkProposalQuota(proposer string, nowMs int64) error {
	if proposalQuota.MaxRequestsPerMin == 0 {
		return nil
	}
	epoch := uint64(nowMs) / uint64(proposalQuota.EpochSeconds*1000)
	_, err := common.Apply(kvQuotaStore{kv: f.kv}, "proposal_create", epoch, []byte(proposer), proposalQuota, 1, 0)
	return err
}
