package catalog

import "github.com/BTreeMap/PlayaBooth/internal/models"

// DefaultStyleKey is the style used when none is chosen or an unknown key is given.
const DefaultStyleKey = "w"

var defaultQuestions = []models.Question{
	{
		ID:   "vibe",
		Text: "What's your vibe right now? Describe it like a movie scene.",
		Hint: "e.g., Foggy neon boardwalk at 3am...",
	},
	{
		ID:   "side_quest",
		Text: "If you had a side-quest tonight, what would it be?",
		Hint: "e.g., Repair someone's bike light",
	},
	{
		ID:   "hybrid",
		Text: "If you were an animal/creature hybrid, what two parts would you combine?",
		Hint: "e.g., Dragon and spider",
	},
	{
		ID:   "weather",
		Text: "If you were a weather event, which would you be?",
		Hint: "e.g., Warm breeze before a storm",
	},
	{
		ID:   "story",
		Text: "Optional: Tell a 10-second story that happened recently",
		Hint: "e.g., I found a lost cat and brought it to the shelter",
	},
}

var defaultStyles = []models.Style{
	{
		Key:            "m",
		Name:           "mixed",
		Description:    "A blend of all styles - playful, mystical, and grounded",
		PromptModifier: "Mix playful, mystical, and cozy elements. Be creative and unexpected.",
	},
	{
		Key:            "y",
		Name:           "mystic",
		Description:    "Spiritual, cosmic, woo-woo vibes",
		PromptModifier: "Channel spiritual and cosmic energy. Think third-eye openers, astral wanderers, crystal healers, and sacred geometry. Names should feel like they belong to someone who reads your aura at sunrise.",
	},
	{
		Key:            "c",
		Name:           "chaotic",
		Description:    "Wild, unpredictable, absurdist",
		PromptModifier: "Be chaotic, absurd, and unexpected. Embrace weirdness and surprise.",
	},
	{
		Key:            "z",
		Name:           "cozy",
		Description:    "Warm, comforting, gentle",
		PromptModifier: "Use warm, gentle, and comforting language. Think soft blankets and warm drinks.",
	},
	{
		Key:            "w",
		Name:           "whimsical",
		Description:    "whimsical, playful, unexpected",
		PromptModifier: "Be whimsical, playful, and unexpected. Embrace weirdness and surprise. Think playa names.",
	},
}
