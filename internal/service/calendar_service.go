package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
)

const calendarSlotLength = 15 * time.Minute

// CalendarService renders a user's scheduled carousels as an iCalendar feed.
type CalendarService interface {
	ExportICS(ctx context.Context, userID int64) (string, error)
}

type calendarService struct {
	cr          repository.CarouselRepository
	frontendURL string
	now         func() time.Time
}

func NewCalendarService(cr repository.CarouselRepository, frontendURL string) CalendarService {
	return &calendarService{cr: cr, frontendURL: strings.TrimRight(frontendURL, "/"), now: time.Now}
}

func (s *calendarService) ExportICS(ctx context.Context, userID int64) (string, error) {
	entries, err := s.cr.ListScheduled(ctx, userID)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//carousel-scheduler//schedule//EN")
	cal.SetXWRCalName("Scheduled carousels")

	stamp := s.now().UTC()
	for _, e := range entries {
		ev := cal.AddEvent(fmt.Sprintf("%s@carousel-scheduler", e.CarouselID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(e.ScheduledAt.UTC())
		ev.SetEndAt(e.ScheduledAt.UTC().Add(calendarSlotLength))
		ev.SetSummary(e.Title)

		if e.Timezone != "" {
			if local, err := timezone.TimeOfDay(e.ScheduledAt, e.Timezone); err == nil {
				day, _ := timezone.DateKeyOf(e.ScheduledAt, e.Timezone)
				ev.SetDescription(fmt.Sprintf("Posts %s %s (%s)", day, local, e.Timezone))
			}
		}
		if s.frontendURL != "" {
			ev.SetURL(fmt.Sprintf("%s/carousels/%s", s.frontendURL, e.CarouselID))
		}
	}
	return cal.Serialize(), nil
}
