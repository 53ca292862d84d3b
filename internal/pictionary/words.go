package pictionary

import (
	"fmt"
	"os"
	"strings"
)

// defaultWords is used when no wordlist file is configured.
var defaultWords = []string{
	"apple", "banana", "bicycle", "bridge", "butterfly",
	"cactus", "camera", "castle", "cloud", "compass",
	"dolphin", "dragon", "drum", "elephant", "envelope",
	"feather", "fireplace", "flashlight", "giraffe", "guitar",
	"hammer", "helicopter", "igloo", "island", "kangaroo",
	"ladder", "lighthouse", "mermaid", "mountain", "mushroom",
	"octopus", "parachute", "penguin", "pirate", "pyramid",
	"rainbow", "robot", "rocket", "sandwich", "scarecrow",
	"snowman", "spider", "submarine", "telescope", "tornado",
	"treasure", "umbrella", "unicorn", "volcano", "windmill",
}

// LoadWords - reads a newline-separated word list from path, skipping
// blank lines. An empty path yields the built-in default list.
func LoadWords(path string) ([]string, error) {
	if path == "" {
		words := make([]string, len(defaultWords))
		copy(words, defaultWords)

		return words, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			words = append(words, line)
		}
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("wordlist %s is empty", path)
	}

	return words, nil
}
