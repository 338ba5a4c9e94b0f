// Package inclusive classifies posting text against accessibility and
// entry-friendliness categories with plain keyword heuristics. It is fully
// deterministic and serves as the always-available baseline when LLM analysis
// is off or failing.
package inclusive

import (
	"sort"
	"strings"
)

// Categories holds the seven boolean classification axes.
type Categories struct {
	VisuallyImpaired       bool `json:"visually_impaired"`
	HearingImpaired        bool `json:"hearing_impaired"`
	MobilityAccess         bool `json:"mobility_access"`
	NeurodiversityFriendly bool `json:"neurodiversity_friendly"`
	JuniorFriendly         bool `json:"junior_friendly"`
	RemotePossible         bool `json:"remote_possible"`
	FlexibleSchedule       bool `json:"flexible_schedule"`
}

// TrueCount returns how many categories are set.
func (c Categories) TrueCount() int {
	count := 0
	for _, on := range []bool{
		c.VisuallyImpaired, c.HearingImpaired, c.MobilityAccess,
		c.NeurodiversityFriendly, c.JuniorFriendly, c.RemotePossible,
		c.FlexibleSchedule,
	} {
		if on {
			count++
		}
	}
	return count
}

// Analysis is the classification result for one posting text.
type Analysis struct {
	Categories Categories `json:"categories"`
	Tags       []string   `json:"tags"`
	Note       string     `json:"note"`
	RiskFlags  []string   `json:"risk_flags"`
}

var (
	juniorKeywords = []string{"без опыта", "стажировка", "обучение", "готовность обучать", "open to juniors", "junior"}
	remoteKeywords = []string{"удал", "remote", "work from home", "telecommute"}
	flexKeywords   = []string{"гибкий график", "частичная занятость", "flexible", "part-time", "частичная"}
	mobKeywords    = []string{"доступн", "адапт", "пандус", "wheelchair", "безбарьер"}
	visualKeywords = []string{"шрифт", "контраст", "screen reader", "скринридер", "размер шрифта", "тактильн"}
	hearKeywords   = []string{"субтитры", "без звонков", "без телефонных", "caption", "subtitles"}
	neuroKeywords  = []string{"нейро", "структур", "предсказуем", "clear instructions", "mentorship"}

	negativeKeywords = []string{
		"только для мужчин", "только для женщин", "без инвалидов",
		"age limit", "требования: возраст", "максимальный возраст",
	}
)

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Classify runs the keyword heuristics over posting text. Keywords are
// substring matches on the lowercased text, so stems like "удал" catch both
// "удалённо" and "удаленная работа".
func Classify(text string) Analysis {
	t := strings.ToLower(text)

	var cats Categories
	tags := make(map[string]bool)

	if containsAny(t, juniorKeywords) {
		cats.JuniorFriendly = true
		tags["novice_friendly"] = true
	}
	if containsAny(t, remoteKeywords) {
		cats.RemotePossible = true
		tags["remote"] = true
	}
	if containsAny(t, flexKeywords) {
		cats.FlexibleSchedule = true
		tags["flexible_hours"] = true
	}
	if containsAny(t, mobKeywords) {
		cats.MobilityAccess = true
		tags["accessibility"] = true
	}
	if containsAny(t, visualKeywords) {
		cats.VisuallyImpaired = true
		tags["visually_friendly"] = true
	}
	if containsAny(t, hearKeywords) {
		cats.HearingImpaired = true
		tags["hearing_friendly"] = true
	}
	if containsAny(t, neuroKeywords) {
		cats.NeurodiversityFriendly = true
		tags["neurodiversity"] = true
	}

	riskFlags := []string{}
	if containsAny(t, negativeKeywords) {
		riskFlags = append(riskFlags, "possible_discrimination")
	}

	tagList := make([]string, 0, len(tags))
	for tag := range tags {
		tagList = append(tagList, tag)
	}
	sort.Strings(tagList)

	return Analysis{
		Categories: cats,
		Tags:       tagList,
		Note:       buildNote(cats),
		RiskFlags:  riskFlags,
	}
}

func buildNote(cats Categories) string {
	parts := []string{}
	if cats.RemotePossible {
		parts = append(parts, "Вакансия допускает удалённую работу")
	}
	if cats.JuniorFriendly {
		parts = append(parts, "Подходит для начинающих / без опыта")
	}
	if cats.FlexibleSchedule {
		parts = append(parts, "Гибкий график")
	}
	if cats.MobilityAccess {
		parts = append(parts, "Обратил внимание на доступность для маломобильных")
	}
	if cats.VisuallyImpaired {
		parts = append(parts, "Есть маркеры, полезные для слабовидящих (контраст/шрифт)")
	}
	if cats.HearingImpaired {
		parts = append(parts, "Поддержка для слабослышащих (субтитры/без звонков)")
	}
	if cats.NeurodiversityFriendly {
		parts = append(parts, "Поддержка нейродиверситета / структурированность задач")
	}

	if len(parts) == 0 {
		return "Информации об инклюзивности немного — требуется дополнительный анализ."
	}
	return strings.Join(parts, "; ")
}
