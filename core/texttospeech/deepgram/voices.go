package deepgram

type deepgramVoice string

const (
	VoiceAsteria   deepgramVoice = "aura-asteria-en"
	VoiceLuna      deepgramVoice = "aura-luna-en"
	VoiceStella    deepgramVoice = "aura-stella-en"
	VoiceAthena    deepgramVoice = "aura-athena-en"
	VoiceHera      deepgramVoice = "aura-hera-en"
	VoiceOrion     deepgramVoice = "aura-orion-en"
	VoiceArcas     deepgramVoice = "aura-arcas-en"
	VoicePerseus   deepgramVoice = "aura-perseus-en"
	VoiceAngus     deepgramVoice = "aura-angus-en"
	VoiceOrpheus   deepgramVoice = "aura-orpheus-en"
	VoiceHelios    deepgramVoice = "aura-helios-en"
	VoiceZeus      deepgramVoice = "aura-zeus-en"
	VoiceThalia    deepgramVoice = "aura-2-thalia-en"
	VoiceAndromeda deepgramVoice = "aura-2-andromeda-en"
	VoiceApollo    deepgramVoice = "aura-2-apollo-en"
	VoiceHelena    deepgramVoice = "aura-2-helena-en"

	defaultVoice = VoiceAsteria
)

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{
		VoiceAsteria, VoiceLuna, VoiceStella, VoiceAthena, VoiceHera, VoiceOrion,
		VoiceArcas, VoicePerseus, VoiceAngus, VoiceOrpheus, VoiceHelios, VoiceZeus,
		VoiceThalia, VoiceAndromeda, VoiceApollo, VoiceHelena,
	}
}

// ParseVoice returns the voice with the given model name.
func ParseVoice(name string) (deepgramVoice, bool) {
	for _, voice := range GetAvailableVoices() {
		if string(voice) == name {
			return voice, true
		}
	}
	return "", false
}
