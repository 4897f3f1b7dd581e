package domain

import (
	"fmt"
	"strings"
	"time"
)

// SlotLabel фиксированная метка дневного слота, например "09:00 AM"
type SlotLabel string

// slotLabelParseFormat принимает часы как с ведущим нулём, так и без
const slotLabelParseFormat = "3:04 PM"

// ParseSlotLabel парсит и нормализует метку слота
func ParseSlotLabel(s string) (SlotLabel, error) {
	t, err := time.Parse(slotLabelParseFormat, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("invalid slot label %q: %w", s, err)
	}
	return SlotLabel(t.Format(SlotLabelFormat)), nil
}

// String returns the label text
func (l SlotLabel) String() string {
	return string(l)
}

// MinutesOfDay возвращает время начала слота в минутах от полуночи
func (l SlotLabel) MinutesOfDay() (int, error) {
	t, err := time.Parse(slotLabelParseFormat, string(l))
	if err != nil {
		return 0, fmt.Errorf("invalid slot label %q: %w", l, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// StartAt возвращает момент начала слота в указанную дату
func (l SlotLabel) StartAt(date time.Time) (time.Time, error) {
	minutes, err := l.MinutesOfDay()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location()), nil
}

// SlotAvailability occupancy of a single slot on a given date
type SlotAvailability struct {
	Label    SlotLabel
	Taken    int
	Capacity int
	Bookable bool // false для прошедших слотов, даже если места есть
}

// Available returns the number of free places in the slot
func (s *SlotAvailability) Available() int {
	if !s.Bookable || s.Taken >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Taken
}

// IsFull returns true if the slot has no free places
func (s *SlotAvailability) IsFull() bool {
	return s.Available() == 0
}

// Calendar дневной шаблон слотов и правила бронирования.
// Все методы чистые: не обращаются к хранилищу и безопасны для конкурентного вызова.
type Calendar struct {
	Labels                  []SlotLabel
	Capacity                int
	AdvanceBookingDays      int // 0 = без ограничения
	MinBookingNoticeMinutes int
}

// NewDefaultCalendar календарь с шаблоном по умолчанию
func NewDefaultCalendar() Calendar {
	return Calendar{
		Labels:                  append([]SlotLabel(nil), DefaultSlotLabels...),
		Capacity:                DefaultSlotCapacity,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}

// Validate проверяет шаблон слотов
func (c Calendar) Validate() error {
	if len(c.Labels) == 0 {
		return fmt.Errorf("slot template is empty")
	}
	if c.Capacity < MinSlotCapacity || c.Capacity > MaxSlotCapacity {
		return fmt.Errorf("slot capacity must be between %d and %d", MinSlotCapacity, MaxSlotCapacity)
	}
	if c.AdvanceBookingDays < 0 || c.AdvanceBookingDays > MaxAdvanceBookingDays {
		return fmt.Errorf("advance booking days must be between 0 and %d", MaxAdvanceBookingDays)
	}
	if c.MinBookingNoticeMinutes < 0 {
		return fmt.Errorf("min booking notice must not be negative")
	}
	seen := make(map[SlotLabel]struct{}, len(c.Labels))
	for _, l := range c.Labels {
		if _, err := l.MinutesOfDay(); err != nil {
			return err
		}
		if _, ok := seen[l]; ok {
			return fmt.Errorf("duplicate slot label %q", l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

// HasLabel returns true if the label belongs to the template
func (c Calendar) HasLabel(label SlotLabel) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsDateBookable проверяет, что на дату вообще можно бронировать
func (c Calendar) IsDateBookable(date, now time.Time) bool {
	if IsDateInPast(date, now) {
		return false
	}
	if c.AdvanceBookingDays == 0 {
		return true
	}
	y, m, d := date.Date()
	dateOnly := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	maxDate := DateOnly(now).AddDate(0, 0, c.AdvanceBookingDays)
	return !dateOnly.After(maxDate)
}

// MeetsNotice проверяет, что до начала слота осталось не меньше MinBookingNoticeMinutes
func (c Calendar) MeetsNotice(date time.Time, label SlotLabel, now time.Time) bool {
	if !IsSameDay(date, now) {
		return true
	}
	minutes, err := label.MinutesOfDay()
	if err != nil {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return minutes >= nowMinutes+c.MinBookingNoticeMinutes
}

// CountOccupying подсчитывает бронирования, занимающие слот
func CountOccupying(label SlotLabel, bookings []*Booking) int {
	count := 0
	for _, b := range bookings {
		// Пропускаем бронирования в терминальных статусах
		if !b.IsActive() {
			continue
		}
		if b.SlotTime == label {
			count++
		}
	}
	return count
}

// Availability вычисляет занятость каждого слота шаблона на дату.
// bookings: бронирования на эту дату, терминальные статусы игнорируются.
// Для даты в прошлом (или за горизонтом бронирования) возвращает пустой список.
func (c Calendar) Availability(date, now time.Time, bookings []*Booking) []SlotAvailability {
	if !c.IsDateBookable(date, now) {
		return []SlotAvailability{}
	}

	result := make([]SlotAvailability, 0, len(c.Labels))
	for _, label := range c.Labels {
		result = append(result, SlotAvailability{
			Label:    label,
			Taken:    CountOccupying(label, bookings),
			Capacity: c.Capacity,
			Bookable: c.MeetsNotice(date, label, now),
		})
	}
	return result
}

// AvailableLabels возвращает свободные метки в порядке шаблона
func (c Calendar) AvailableLabels(date, now time.Time, bookings []*Booking) []SlotLabel {
	labels := make([]SlotLabel, 0, len(c.Labels))
	for _, slot := range c.Availability(date, now, bookings) {
		if !slot.IsFull() {
			labels = append(labels, slot.Label)
		}
	}
	return labels
}
