package updown

// Phase 游戏阶段，每个阶段只携带该阶段合法的数据
type Phase interface {
	Status() Status
	isPhase()
}

// Waiting 房间等待开始
type Waiting struct{}

// Dealing 已发牌，等待进入下注
type Dealing struct {
	Round Round
}

// Betting 依次下注
type Betting struct {
	Round Round
}

// PlayingTrick 出牌阶段，Trick 为 nil 表示两墩之间，等待开新一墩
type PlayingTrick struct {
	Round Round
	Trick *Trick
}

// TrickComplete 一墩打完，等待所有人确认
type TrickComplete struct {
	Round Round
	Trick Trick
}

// RoundComplete 一局打完并已结算，等待所有人确认
type RoundComplete struct {
	Round Round
}

// GameComplete 游戏结束
type GameComplete struct{}

func (Waiting) Status() Status       { return StatusWaiting }
func (Dealing) Status() Status       { return StatusDealing }
func (Betting) Status() Status       { return StatusBetting }
func (PlayingTrick) Status() Status  { return StatusPlayingTrick }
func (TrickComplete) Status() Status { return StatusTrickComplete }
func (RoundComplete) Status() Status { return StatusRoundComplete }
func (GameComplete) Status() Status  { return StatusGameComplete }

func (Waiting) isPhase()       {}
func (Dealing) isPhase()       {}
func (Betting) isPhase()       {}
func (PlayingTrick) isPhase()  {}
func (TrickComplete) isPhase() {}
func (RoundComplete) isPhase() {}
func (GameComplete) isPhase()  {}

// roundOf 取出阶段中的当前局
func roundOf(p Phase) (Round, bool) {
	switch v := p.(type) {
	case Dealing:
		return v.Round, true
	case Betting:
		return v.Round, true
	case PlayingTrick:
		return v.Round, true
	case TrickComplete:
		return v.Round, true
	case RoundComplete:
		return v.Round, true
	}
	return Round{}, false
}

// trickOf 取出阶段中的当前墩
func trickOf(p Phase) (Trick, bool) {
	switch v := p.(type) {
	case PlayingTrick:
		if v.Trick != nil {
			return *v.Trick, true
		}
	case TrickComplete:
		return v.Trick, true
	}
	return Trick{}, false
}
