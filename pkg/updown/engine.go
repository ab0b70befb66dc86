package updown

import (
	"math/rand/v2"
	"time"
)

// Rand 随机源，*rand.Rand 满足该接口
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Clock 时间源
type Clock interface {
	Now() time.Time
}

// ClockFunc 把函数转换为 Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// globalRand 使用 math/rand/v2 的全局随机源，可以并发使用
type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Engine 状态机，本身不保存任何游戏数据
// 所有方法接收旧的 Game 返回新的 Game，不修改传入的数据
type Engine struct {
	rand  Rand
	clock Clock
}

// Option 设置 Engine
type Option func(*Engine)

// WithRand 设置随机源，测试中用固定种子回放
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// WithClock 设置时间源
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine 创建状态机
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rand:  globalRand{},
		clock: ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// now 当前 Unix 毫秒
func (e *Engine) now() int64 {
	return e.clock.Now().UnixMilli()
}

// Apply 处理一个玩家操作，并推进到稳定状态
// 出错时不返回任何中间状态，调用方应放弃本次写入
func (e *Engine) Apply(g Game, a Action) (Game, error) {
	next, err := e.Process(g, a)
	if err != nil {
		return Game{}, err
	}
	return e.Advance(next)
}

// Advance 自动执行不需要玩家输入的流转，直到状态不再变化
// 正常流程最多两步（dealing->betting 或开新一墩），MaxTransitions 只是保护
func (e *Engine) Advance(g Game) (Game, error) {
	for range MaxTransitions {
		next, changed, err := e.step(g)
		if err != nil {
			return Game{}, err
		}
		if !changed {
			return next, nil
		}
		g = next
	}
	return Game{}, ErrTransitionLoop
}

// step 执行一次自动流转
func (e *Engine) step(g Game) (Game, bool, error) {
	switch p := g.Phase.(type) {
	case Dealing:
		g.Phase = Betting{Round: p.Round}
		return g, true, nil
	case PlayingTrick:
		if p.Trick == nil {
			next, err := e.startTrick(g, p.Round)
			return next, true, err
		}
	}
	return g, false, nil
}
