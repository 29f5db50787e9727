package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pokebattle/internal/scripting"
)

// rewardVisibility reports which globals a reward script can reach.
const rewardVisibility = `
function reward(difficulty, correct)
	return 0
end

function visible(name)
	return _G[name] ~= nil
end
`

func TestSandbox_RewardScriptSeesOnlySafeGlobals(t *testing.T) {
	s, err := scripting.LoadString("visibility", rewardVisibility, 0, nil)
	require.NoError(t, err)
	defer s.Close()

	for _, name := range []string{"require", "dofile", "loadfile", "load", "collectgarbage", "os", "io", "debug", "package"} {
		ret, err := s.Call("visible", lua.LString(name))
		require.NoError(t, err)
		assert.Equal(t, lua.LFalse, ret, "%s must be hidden", name)
	}
	for _, name := range []string{"math", "string", "table", "pairs", "tostring"} {
		ret, err := s.Call("visible", lua.LString(name))
		require.NoError(t, err)
		assert.Equal(t, lua.LTrue, ret, "%s must be available", name)
	}
}

func TestSandbox_RewardScriptUsesStdlibHelpers(t *testing.T) {
	p, err := scripting.LoadRewardPolicyString("helpers", `
		function reward(difficulty, correct)
			if not correct then return 0 end
			return math.floor(rewards[string.lower(difficulty)] * 1.5)
		end`, 0, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()
	assert.EqualValues(t, 15, p.Reward("EASY", true))
	assert.EqualValues(t, 75, p.Reward("Difficult", true))
}

func TestSandbox_RequireCallFailsAtLoad(t *testing.T) {
	_, err := scripting.LoadRewardPolicyString("escape", `
		local os = require("os")
		function reward(difficulty, correct) return 1 end`, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestSandbox_TopLevelLoopExhaustsLoadBudget(t *testing.T) {
	_, err := scripting.LoadRewardPolicyString("spin", `
		while true do end
		function reward(difficulty, correct) return 1 end`, 50, zap.NewNop())
	assert.Error(t, err)
}

func TestSandbox_BudgetExhaustedInRewardFallsBackAndLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p, err := scripting.LoadRewardPolicyString("greedy", `
		function reward(difficulty, correct)
			local n = 0
			while true do n = n + 1 end
			return n
		end`, 100, zap.New(core))
	require.NoError(t, err)
	defer p.Close()

	assert.EqualValues(t, 50, p.Reward("difficult", true))
	assert.EqualValues(t, 0, p.Reward("difficult", false))
	assert.Equal(t, 2, logs.FilterMessage("reward script failed").Len())
}

// Property: whatever the budget, a runaway reward script never blocks
// Reward and always pays the default.
func TestPropertyRunawayRewardScriptPaysDefault(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(20, 200).Draw(t, "limit")
		p, err := scripting.LoadRewardPolicyString("runaway",
			`function reward(difficulty, correct) while true do end end`, limit, zap.NewNop())
		if err != nil {
			t.Fatalf("load with limit=%d: %v", limit, err)
		}
		defer p.Close()
		d := rapid.SampledFrom([]string{"easy", "medium", "difficult"}).Draw(t, "difficulty")
		if got, want := p.Reward(d, true), scripting.DefaultRewards[d]; got != want {
			t.Fatalf("Reward(%q) = %d with limit=%d, want %d", d, got, limit, want)
		}
	})
}
