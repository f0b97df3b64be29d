package workflow

// EffectKind вид эффекта
type EffectKind int

const (
	// EffectPrompt запросить у пользователя ввод для Step
	EffectPrompt EffectKind = iota + 1
	// EffectAwaitComment запросить текст комментария
	EffectAwaitComment
	// EffectFinalize сохранить черновик, в ответ драйвер подает SlotTaken, Finalized или Rejected
	EffectFinalize
	// EffectNotice показать сообщение перед следующим запросом
	EffectNotice
	// EffectEnd диалог завершен
	EffectEnd
)

// Notice сообщение для EffectNotice
type Notice string

const (
	NoticeSlotTaken      Notice = "slot_taken"
	NoticeInvalidComment Notice = "invalid_comment"
	NoticeUnavailable    Notice = "unavailable"
)

// Effect инструкция для драйвера
type Effect struct {
	Kind          EffectKind
	Step          Step
	Notice        Notice
	Detail        string
	AppointmentID int64
}

func prompt(step Step) Effect { return Effect{Kind: EffectPrompt, Step: step} }

func awaitComment() Effect { return Effect{Kind: EffectAwaitComment, Step: StepComment} }

func finalize(step Step) Effect { return Effect{Kind: EffectFinalize, Step: step} }

func notice(n Notice, detail string) Effect { return Effect{Kind: EffectNotice, Notice: n, Detail: detail} }

func end(step Step, appointmentID int64) Effect {
	return Effect{Kind: EffectEnd, Step: step, AppointmentID: appointmentID}
}

// reprompt повторно запрашивает ввод текущего шага
func reprompt(s State) Effect {
	if s.Step == StepComment {
		return awaitComment()
	}
	return prompt(s.Step)
}
