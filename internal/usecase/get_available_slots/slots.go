package get_available_slots

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// GenerateSlots выводит кандидатов в слоты из недельных шаблонов.
// Чистая функция: одинаковые входные данные дают одинаковый результат.
//
// Для каждой даты диапазона:
// - выходной мастера пропускается;
// - берется шаблон дня недели (нет шаблона - нет слотов);
// - курсор идет от начала рабочего дня с шагом slotDuration;
// - слот, пересекающий перерыв, пропускается;
// - слот, выходящий за конец рабочего дня, отбрасывается.
//
// Пример: 09:00-18:00, перерыв 13:00-14:00, шаг 60 →
// 09,10,11,12,14,15,16,17
func GenerateSlots(
	templates []*domain.AvailabilityTemplate,
	daysOff []*domain.DayOff,
	dateRange domain.DateRange,
	slotDuration int,
) []domain.Slot {
	slots := make([]domain.Slot, 0)
	if slotDuration <= 0 {
		return slots
	}

	off := make(map[string]struct{}, len(daysOff))
	for _, d := range daysOff {
		off[d.Date.Format(domain.DateFormat)] = struct{}{}
	}

	byWeekday := make(map[time.Weekday]*domain.AvailabilityTemplate, len(templates))
	for _, tpl := range templates {
		if _, exists := byWeekday[tpl.DayOfWeek]; !exists {
			byWeekday[tpl.DayOfWeek] = tpl
		}
	}

	for _, date := range dateRange.Dates() {
		if _, isOff := off[date.Format(domain.DateFormat)]; isOff {
			continue
		}

		tpl, ok := byWeekday[date.Weekday()]
		if !ok {
			continue
		}

		slots = append(slots, slotsForDay(tpl, date, slotDuration)...)
	}

	return slots
}

func slotsForDay(tpl *domain.AvailabilityTemplate, date time.Time, slotDuration int) []domain.Slot {
	start, end := tpl.StartTime.Minutes(), tpl.EndTime.Minutes()
	if start < 0 || end < 0 || start >= end {
		return nil
	}

	breakStart, breakEnd := -1, -1
	if tpl.HasBreak() {
		breakStart, breakEnd = tpl.BreakStart.Minutes(), tpl.BreakEnd.Minutes()
	}

	var slots []domain.Slot
	for cursor := start; cursor+slotDuration <= end; cursor += slotDuration {
		slotEnd := cursor + slotDuration

		if breakStart >= 0 && cursor < breakEnd && slotEnd > breakStart {
			continue
		}

		// границы проверены выше, ошибок быть не может
		startTS, _ := types.NewTimeStringFromMinutes(cursor)
		endTS, _ := types.NewTimeStringFromMinutes(slotEnd)

		slots = append(slots, domain.Slot{
			ProviderID: tpl.ProviderID,
			Date:       date,
			StartTime:  startTS,
			EndTime:    endTS,
		})
	}
	return slots
}

// excludeBooked убирает слоты, пересекающиеся с неотмененными записями.
// Интервалы полуоткрытые: запись 10:00-11:00 не блокирует слот 11:00-12:00
func excludeBooked(slots []domain.Slot, appointments []*domain.Appointment) []domain.Slot {
	free := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		taken := false
		for _, appt := range appointments {
			if !appt.OccupiesSlot() {
				continue
			}
			if slot.OverlapsAppointment(appt) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free
}

// excludeTooSoon убирает слоты сегодняшнего дня, начинающиеся раньше now + minNotice
func excludeTooSoon(slots []domain.Slot, now time.Time, minNoticeMinutes int) []domain.Slot {
	today := domain.TruncateDate(now)
	earliest := now.Hour()*60 + now.Minute() + minNoticeMinutes

	result := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if domain.SameDate(slot.Date, today) && slot.StartTime.Minutes() < earliest {
			continue
		}
		result = append(result, slot)
	}
	return result
}

func sortSlots(slots []domain.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartTime.IsBefore(slots[j].StartTime)
	})
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	return domain.TruncateDate(date).Before(domain.TruncateDate(now))
}
