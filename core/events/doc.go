// Package events defines the typed events that drive an interview session.
//
// Event kinds are grouped by the collaborator that produces them:
//
//   - synthesis.*
//   - recognition.*
//   - countdown.*
//   - schedule.*
//
// Every event carries the generation of the session that was current when the
// producing work was started. Sessions drop events from older generations, so
// a late callback from a stopped recognizer or a cancelled countdown can never
// be applied to the phase that replaced it.
//
// synthesis events
//
//   - SynthesisStarted (synthesis.started): the synthesizer began speaking.
//   - UtteranceSpoken (synthesis.spoken): the utterance finished playing, or
//     was skipped because no synthesizer is available.
//   - SynthesisFailed (synthesis.failed): the synthesizer gave up on the
//     utterance. Sessions treat it like UtteranceSpoken.
//
// recognition events
//
//   - RecognitionStarted (recognition.started): the recognizer is capturing.
//   - TranscriptInterim (recognition.transcript_interim): mutable tail of the
//     transcript, for display only.
//   - TranscriptFinal (recognition.transcript_final): append-only transcript
//     fragment.
//   - RecognitionFailed (recognition.failed): recognizer error code.
//   - RecognitionEnded (recognition.ended): the recognizer stopped.
//
// countdown events
//
//   - TimerTicked (countdown.ticked): one second elapsed; carries the new
//     remaining value.
//   - TimerExpired (countdown.expired): the countdown reached zero.
//
// schedule events
//
//   - RecognitionRestartDue (schedule.recognition_restart_due): the delay
//     before restarting an unexpectedly ended recognizer elapsed.
//   - QuestionDue (schedule.question_due): the pause before speaking the next
//     question elapsed.
package events
