package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GeneratePayoutReference builds a unique human-readable reference for a
// payout request.
func GeneratePayoutReference(userID uint) string {
	return generateRef("WPL", userID)
}

func generateRef(prefix string, id uint) string {
	mu.Lock()
	defer mu.Unlock()

	nowNano := time.Now().UnixNano()
	nanoPart := nowNano % 1000000
	randPart := seededRand.Intn(900) + 100

	return fmt.Sprintf("%s-%06d%03d%d", prefix, nanoPart, randPart, id)
}
