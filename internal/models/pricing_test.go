package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerLocationCost(t *testing.T) {
	assert.Equal(t, int64(PublishCostBasicTier), PerLocationCost(PlanFree))
	assert.Equal(t, int64(PublishCostBasicTier), PerLocationCost(PlanBasic))
	assert.Equal(t, int64(PublishCostPaidTier), PerLocationCost(PlanPro))
	assert.Equal(t, int64(PublishCostPaidTier), PerLocationCost(PlanBusiness))
	assert.Equal(t, int64(PublishCostBasicTier), PerLocationCost("unknown"))
}
