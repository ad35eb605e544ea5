package model

// Square is one position on the linear board
type Square struct {
	Index    int  `json:"index"`
	IsStart  bool `json:"isStart"`
	IsFinish bool `json:"isFinish"`
	IsTrivia bool `json:"isTrivia"`
}

// Board is the ordered sequence of squares players race across
type Board []Square

// LastIndex returns the index of the finish square
func (b Board) LastIndex() int {
	return len(b) - 1
}

// TriviaCount returns the number of trivia squares on the board
func (b Board) TriviaCount() int {
	count := 0
	for _, sq := range b {
		if sq.IsTrivia {
			count++
		}
	}
	return count
}
