package mapper

import (
	"time"

	"regdesk-be/internal/dto"
	"regdesk-be/internal/entity"
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/pkg/admin/category"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/admin/notify"
)

func CategoryToRef(c *entity.Category) *dto.CategoryRef {
	if c == nil {
		return nil
	}
	return &dto.CategoryRef{
		Id:            c.Id,
		NameEnglish:   c.NameEnglish,
		NameMalayalam: c.NameMalayalam,
	}
}

func PanchayathToRef(p *entity.Panchayath) *dto.PanchayathRef {
	if p == nil {
		return nil
	}
	return &dto.PanchayathRef{Id: p.Id, Name: p.Name, District: p.District}
}

// RegistrationToListResponse derives days remaining and bucket at the given instant.
func RegistrationToListResponse(r *entity.Registration, classifier expiry.Classifier, now time.Time) *dto.RegistrationListResponse {
	if r == nil {
		return nil
	}
	res := &dto.RegistrationListResponse{
		Id:           r.Id,
		CustomerId:   r.CustomerId,
		FullName:     r.FullName,
		MobileNumber: r.MobileNumber,
		Status:       string(r.Status),
		Category:     CategoryToRef(r.Category),
		Panchayath:   PanchayathToRef(r.Panchayath),
		ExpiryDate:   r.ExpiryDate,
		ExpiryBucket: string(classifier.Classify(r.Status, r.ExpiryDate, now)),
		CreatedAt:    r.CreatedAt,
	}
	if r.Category != nil {
		res.CategoryColor = category.Color(r.Category.NameEnglish)
	}
	if r.ExpiryDate != nil {
		days := expiry.DaysRemaining(*r.ExpiryDate, now)
		res.DaysRemaining = &days
	}
	return res
}

func RegistrationsToListResponse(regs []*entity.Registration, classifier expiry.Classifier, now time.Time) []*dto.RegistrationListResponse {
	res := make([]*dto.RegistrationListResponse, 0, len(regs))
	for _, r := range regs {
		res = append(res, RegistrationToListResponse(r, classifier, now))
	}
	return res
}

func RegistrationToDetailResponse(r *entity.Registration, classifier expiry.Classifier, now time.Time) *dto.RegistrationDetailResponse {
	if r == nil {
		return nil
	}
	return &dto.RegistrationDetailResponse{
		RegistrationListResponse: *RegistrationToListResponse(r, classifier, now),
		Address:                  r.Address,
		Ward:                     r.Ward,
		Fee:                      r.Fee,
		PreferenceCategory:       CategoryToRef(r.PreferenceCategory),
		ApprovedDate:             r.ApprovedDate,
		ApprovedBy:               r.ApprovedBy,
		UpdatedAt:                r.UpdatedAt,
	}
}

func EventsToResponse(events []*entity.RegistrationEvent) []*dto.RegistrationEventResponse {
	res := make([]*dto.RegistrationEventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, &dto.RegistrationEventResponse{
			Id:         e.Id,
			Action:     string(e.Action),
			Actor:      e.Actor,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return res
}

func CategoryToResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		Id:            c.Id,
		NameEnglish:   c.NameEnglish,
		NameMalayalam: c.NameMalayalam,
		ExpiryDays:    c.ExpiryDays,
		IsActive:      c.IsActive,
		Color:         category.Color(c.NameEnglish),
		CreatedAt:     c.CreatedAt,
	}
}

func CategoriesToResponse(cats []*entity.Category) []*dto.CategoryResponse {
	res := make([]*dto.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		res = append(res, CategoryToResponse(c))
	}
	return res
}

func PanchayathsToResponse(ps []*entity.Panchayath) []*dto.PanchayathResponse {
	res := make([]*dto.PanchayathResponse, 0, len(ps))
	for _, p := range ps {
		res = append(res, &dto.PanchayathResponse{Id: p.Id, Name: p.Name, District: p.District})
	}
	return res
}

func TransferToResponse(t *entity.CategoryTransferRequest) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	return &dto.TransferResponse{
		Id:             t.Id,
		RegistrationId: t.RegistrationId,
		CustomerId:     t.CustomerId,
		FullName:       t.FullName,
		MobileNumber:   t.MobileNumber,
		FromCategory:   CategoryToRef(t.FromCategory),
		ToCategory:     CategoryToRef(t.ToCategory),
		Reason:         t.Reason,
		Status:         string(t.Status),
		ResolvedBy:     t.ResolvedBy,
		ResolvedAt:     t.ResolvedAt,
		CreatedAt:      t.CreatedAt,
	}
}

func TransfersToResponse(ts []*entity.CategoryTransferRequest) []*dto.TransferResponse {
	res := make([]*dto.TransferResponse, 0, len(ts))
	for _, t := range ts {
		res = append(res, TransferToResponse(t))
	}
	return res
}

func AlertsToResponse(alerts []notify.Alert) []dto.ExpiryAlert {
	res := make([]dto.ExpiryAlert, 0, len(alerts))
	for _, a := range alerts {
		res = append(res, dto.ExpiryAlert{
			RegistrationId: a.RegistrationId,
			CustomerId:     a.CustomerId,
			FullName:       a.FullName,
			MobileNumber:   a.MobileNumber,
			CategoryName:   a.CategoryName,
			ExpiryDate:     a.ExpiryDate,
			DaysRemaining:  a.DaysRemaining,
			Bucket:         string(a.Bucket),
		})
	}
	return res
}

func SummaryToResponse(s notify.Summary) *dto.NotificationSummary {
	res := &dto.NotificationSummary{
		ExpiredCount:      s.ExpiredCount,
		ExpiringSoonCount: s.ExpiringSoonCount,
		Alerts:            AlertsToResponse(s.Alerts),
		Acknowledged:      s.Acknowledged,
	}
	if !s.RefreshedAt.IsZero() {
		at := s.RefreshedAt
		res.RefreshedAt = &at
	}
	return res
}

func LogToListResponse(e logger.LogEntry) dto.LogListResponse {
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		CreatedAt: parseLogTime(e.Timestamp),
	}
}

// zap's ISO8601 encoder, with RFC 3339 for lines written elsewhere
func parseLogTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func LogToDetailResponse(e logger.LogEntry) *dto.LogDetailResponse {
	return &dto.LogDetailResponse{
		LogListResponse: LogToListResponse(e),
		Details:         e.Details,
	}
}
