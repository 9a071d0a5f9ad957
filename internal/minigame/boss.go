package minigame

import (
	"fmt"
	"strconv"
)

// Boss battle tuning.
const (
	BossMaxHP      = 100
	BossHitDamage  = 34
	PlayerMaxHP    = 3
	bossBattleGame = "boss-battle"
)

// Question is one battle-quiz prompt.
type Question struct {
	Prompt  string   `json:"prompt"`
	Answers []string `json:"answers"`
	correct int
}

var battleQuestions = []Question{
	{Prompt: "Why is it important to brush your teeth every morning?", Answers: []string{"To make them sparkle", "To remove germs and prevent cavities", "To taste the toothpaste"}, correct: 1},
	{Prompt: "What should you do with your toys after playing?", Answers: []string{"Leave them on the floor", "Put them in the toy box", "Throw them under the bed"}, correct: 1},
	{Prompt: "How can you help your parents at home?", Answers: []string{"By asking for more toys", "By helping with small chores like setting the table", "By watching TV all day"}, correct: 1},
}

// BossBattle is a quiz duel: correct answers damage the boss, wrong ones cost
// the player a heart. Questions cycle until one side drops to zero.
type BossBattle struct {
	LevelID  int      `json:"levelId"`
	BossHP   int      `json:"bossHp"`
	PlayerHP int      `json:"playerHp"`
	Question int      `json:"question"`
	Current  Question `json:"current"`
}

func NewBossBattle(levelID int) BossBattle {
	return BossBattle{
		LevelID:  levelID,
		BossHP:   BossMaxHP,
		PlayerHP: PlayerMaxHP,
		Current:  battleQuestions[0],
	}
}

func (BossBattle) Game() string { return bossBattleGame }

// Apply accepts "answer:<index>" with a 0-based answer index.
func (b BossBattle) Apply(ev Event) (Runner, error) {
	if _, over := b.Result(); over {
		return b, ErrFinished
	}
	if ev.Kind != "answer" {
		return b, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	q := battleQuestions[b.Question]
	i, err := strconv.Atoi(ev.Target)
	if err != nil || i < 0 || i >= len(q.Answers) {
		return b, fmt.Errorf("%w: %q", ErrBadTarget, ev.Target)
	}
	if i == q.correct {
		b.BossHP = max(0, b.BossHP-BossHitDamage)
		b.Question = (b.Question + 1) % len(battleQuestions)
		b.Current = battleQuestions[b.Question]
	} else {
		b.PlayerHP--
	}
	return b, nil
}

// Victory reports whether the boss was defeated.
func (b BossBattle) Victory() bool { return b.BossHP <= 0 }

// Result: victory is 3 stars and 3000 points, defeat is zero.
func (b BossBattle) Result() (Result, bool) {
	switch {
	case b.BossHP <= 0:
		return Result{Stars: 3, Score: 3000}, true
	case b.PlayerHP <= 0:
		return Result{}, true
	}
	return Result{}, false
}
