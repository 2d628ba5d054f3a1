package scheduleservice

import (
	"strconv"
	"strings"
	"unicode"
)

const maxLobbyAttempts = 100

// generateLobby picks a room name not already used on the match day.
func (s *ScheduleService) generateLobby(used []string) (name, pass string, err error) {
	taken := make(map[string]bool, len(used))
	for _, u := range used {
		taken[u] = true
	}

	s.fakerMu.Lock()
	defer s.fakerMu.Unlock()

	for i := 0; i < maxLobbyAttempts; i++ {
		name = lobbyWord(s.faker.Adjective()) + lobbyWord(s.faker.Animal())
		if name == "" || taken[name] {
			continue
		}
		pass = lobbyWord(s.faker.Noun()) + strconv.Itoa(s.faker.Number(10, 99))
		return name, pass, nil
	}
	return "", "", ErrLobbyExhausted
}

func lobbyWord(w string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, w)
}
