package scripting

import (
	"fmt"

	"go.uber.org/zap"

	lua "github.com/yuin/gopher-lua"
)

// rewardFunc is the global a reward script must define:
// reward(difficulty, correct) -> coins.
const rewardFunc = "reward"

// DefaultRewards are the coins paid for a correct answer per difficulty.
var DefaultRewards = map[string]int64{
	"easy":      10,
	"medium":    20,
	"difficult": 50,
}

// RewardPolicy prices quiz answers. A nil script means DefaultRewards.
type RewardPolicy struct {
	script *Script
	logger *zap.Logger
}

// NewDefaultRewardPolicy returns a policy that pays DefaultRewards.
func NewDefaultRewardPolicy(logger *zap.Logger) *RewardPolicy {
	return &RewardPolicy{logger: logger}
}

// LoadRewardPolicy loads a Lua reward script. The script sees a global
// table "rewards" holding DefaultRewards. An empty path yields the default
// policy.
//
// Postcondition: Returns a ready policy, or an error if the script fails to
// load or defines no reward function.
func LoadRewardPolicy(path string, instLimit int, logger *zap.Logger) (*RewardPolicy, error) {
	if path == "" {
		return NewDefaultRewardPolicy(logger), nil
	}
	s, err := LoadFile(path, instLimit, registerRewards)
	if err != nil {
		return nil, err
	}
	return newRewardPolicy(s, path, logger)
}

// LoadRewardPolicyString is LoadRewardPolicy for an in-memory script.
func LoadRewardPolicyString(name, src string, instLimit int, logger *zap.Logger) (*RewardPolicy, error) {
	s, err := LoadString(name, src, instLimit, registerRewards)
	if err != nil {
		return nil, err
	}
	return newRewardPolicy(s, name, logger)
}

func registerRewards(L *lua.LState) {
	defaults := L.NewTable()
	for k, v := range DefaultRewards {
		defaults.RawSetString(k, lua.LNumber(v))
	}
	L.SetGlobal("rewards", defaults)
}

func newRewardPolicy(s *Script, path string, logger *zap.Logger) (*RewardPolicy, error) {
	if s.L.GetGlobal(rewardFunc).Type() != lua.LTFunction {
		s.Close()
		return nil, fmt.Errorf("scripting: %s: %s: %w", path, rewardFunc, ErrNoFunction)
	}
	logger.Info("reward script loaded", zap.String("path", path))
	return &RewardPolicy{script: s, logger: logger}, nil
}

func defaultReward(difficulty string, correct bool) int64 {
	if !correct {
		return 0
	}
	return DefaultRewards[difficulty]
}

// Reward returns the coins paid for an answer.
//
// Postcondition: The result is >= 0. A failing or non-numeric script result
// is logged and replaced by the default reward.
func (p *RewardPolicy) Reward(difficulty string, correct bool) int64 {
	if p.script == nil {
		return defaultReward(difficulty, correct)
	}
	ret, err := p.script.Call(rewardFunc, lua.LString(difficulty), lua.LBool(correct))
	if err != nil {
		p.logger.Warn("reward script failed", zap.String("difficulty", difficulty), zap.Error(err))
		return defaultReward(difficulty, correct)
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		p.logger.Warn("reward script returned a non-number",
			zap.String("difficulty", difficulty),
			zap.String("type", ret.Type().String()),
		)
		return defaultReward(difficulty, correct)
	}
	return max(int64(n), 0)
}

// Close releases the script VM, if any.
func (p *RewardPolicy) Close() {
	if p.script != nil {
		p.script.Close()
	}
}
