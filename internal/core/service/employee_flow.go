package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
	"github.com/nirmaanhq/chatbot-system/internal/core/replies"
)

var sixDigitsRe = regexp.MustCompile(`^\d{6}$`)
var quantityRe = regexp.MustCompile(`^(\d+)\s*(.*)$`)

const dashboardLimit = 5

// EmployeeFlow is the employee-side conversation state machine: a one-time
// verification gate, then main menu, activity logging, material requests,
// and the dashboard. All prompts are Gujarati.
type EmployeeFlow struct {
	otp       *OTPService
	sessions  ports.SessionStore
	sites     ports.SiteRepository
	records   ports.RecordRepository
	messenger ports.Messenger
	media     ports.MediaFetcher
	images    ports.ImageStore
	timeout   time.Duration
	log       zerolog.Logger
}

func NewEmployeeFlow(
	otp *OTPService,
	sessions ports.SessionStore,
	sites ports.SiteRepository,
	records ports.RecordRepository,
	messenger ports.Messenger,
	media ports.MediaFetcher,
	images ports.ImageStore,
	timeout time.Duration,
	log zerolog.Logger,
) *EmployeeFlow {
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}
	return &EmployeeFlow{
		otp:       otp,
		sessions:  sessions,
		sites:     sites,
		records:   records,
		messenger: messenger,
		media:     media,
		images:    images,
		timeout:   timeout,
		log:       log,
	}
}

// Handle advances the employee state machine by one inbound message.
func (f *EmployeeFlow) Handle(ctx context.Context, user *domain.User, sess *domain.Session, msg ports.InboundMessage) error {
	text := strings.TrimSpace(msg.Content())
	lower := strings.ToLower(text)

	// Unverified employees always land in the verification sub-machine,
	// whatever the session says.
	if !user.Verified {
		return f.handleVerification(ctx, user, text, lower)
	}

	switch lower {
	case "menu", "hi", "hello", "start":
		sess.Clear()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.sendMenu(ctx, user.Phone)
	case "help":
		f.send(ctx, user.Phone, replies.EmployeeHelp)
		return nil
	}

	switch sess.Intent {
	case domain.IntentLogActivity:
		return f.handleActivity(ctx, user, sess, msg, text, lower)
	case domain.IntentRequestMaterials:
		return f.handleMaterial(ctx, user, sess, msg, text, lower)
	default:
		return f.handleMenu(ctx, user, sess, lower)
	}
}

// handleVerification runs the OTP gate: exact 6 digits are verified, resend
// keywords re-issue, first contact issues and explains, anything else reminds.
func (f *EmployeeFlow) handleVerification(ctx context.Context, user *domain.User, text, lower string) error {
	if sixDigitsRe.MatchString(text) {
		accepted, reply := f.otp.Verify(ctx, user.Phone, text)
		result := "rejected"
		if accepted {
			result = "accepted"
		}
		metrics.OTPVerifyTotal.WithLabelValues(result).Inc()
		f.send(ctx, user.Phone, reply)
		if accepted {
			user.Verified = true
			f.send(ctx, user.Phone, replies.EmployeeWelcome)
			return f.sendMenu(ctx, user.Phone)
		}
		return nil
	}

	if wantsResend(lower) {
		f.send(ctx, user.Phone, f.issue(ctx, user.Phone, replies.OTPResent))
		return nil
	}

	if !f.otp.HasActive(ctx, user.Phone) {
		f.send(ctx, user.Phone, f.issue(ctx, user.Phone, replies.OTPFirstContact))
		return nil
	}

	f.send(ctx, user.Phone, replies.OTPReminder)
	return nil
}

// issue wraps OTPService.Issue and picks the confirmation or failure text.
func (f *EmployeeFlow) issue(ctx context.Context, phone, onSuccess string) string {
	if f.otp.Issue(ctx, phone) {
		metrics.OTPIssuedTotal.WithLabelValues("sent").Inc()
		return onSuccess
	}
	metrics.OTPIssuedTotal.WithLabelValues("failed").Inc()
	return replies.OTPSendFailed
}

func wantsResend(lower string) bool {
	for _, kw := range []string{"resend", "code", "otp", "કોડ"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// handleMenu maps main-menu selections. Unrecognized input redisplays the
// menu; this is the default branch, never an error.
func (f *EmployeeFlow) handleMenu(ctx context.Context, user *domain.User, sess *domain.Session, lower string) error {
	switch lower {
	case replies.MenuLogActivity, "1":
		sess.Begin(domain.IntentLogActivity)
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.promptSite(ctx, user.Phone)
	case replies.MenuRequestMaterials, "2":
		sess.Begin(domain.IntentRequestMaterials)
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.promptSite(ctx, user.Phone)
	case replies.MenuDashboard, "3":
		return f.showDashboard(ctx, user)
	case replies.MenuHelp, "4":
		f.send(ctx, user.Phone, replies.EmployeeHelp)
		return nil
	default:
		return f.sendMenu(ctx, user.Phone)
	}
}

// handleActivity walks the fixed step order of the activity-logging flow.
// Invalid input re-prompts without advancing.
func (f *EmployeeFlow) handleActivity(ctx context.Context, user *domain.User, sess *domain.Session, msg ports.InboundMessage, text, lower string) error {
	switch sess.Step {
	case domain.StepSelectSite:
		siteID, ok := f.resolveSite(ctx, text, lower)
		if !ok {
			f.send(ctx, user.Phone, replies.InvalidSite)
			return nil
		}
		sess.Activity.SiteID = siteID
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		if err := f.messenger.SendList(ctx, user.Phone, replies.PromptActivityType, replies.EmployeeMenuButton, replies.ActivityTypeSections()); err != nil {
			f.log.Warn().Err(err).Str("phone", user.Phone).Msg("activity type prompt failed")
		}
		return nil

	case domain.StepSelectActivityType:
		if !domain.ValidActivityType(lower) {
			f.send(ctx, user.Phone, replies.InvalidActivityType)
			return nil
		}
		sess.Activity.ActivityType = lower
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptHours)
		return nil

	case domain.StepEnterHours:
		hours, err := strconv.Atoi(text)
		if err != nil || hours < domain.MinActivityHours || hours > domain.MaxActivityHours {
			f.send(ctx, user.Phone, replies.InvalidHours)
			return nil
		}
		sess.Activity.Hours = hours
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptDescription)
		return nil

	case domain.StepEnterDescription:
		if !isSkip(lower) {
			sess.Activity.Description = text
		}
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptImage)
		return nil

	case domain.StepUploadImage:
		var image *domain.ImageRef
		if msg.HasImage() {
			ref, ok := f.uploadImage(ctx, msg, "activities")
			if !ok {
				f.send(ctx, user.Phone, replies.ImageUploadFailed)
				return nil
			}
			image = ref
		} else if !isSkip(lower) {
			f.send(ctx, user.Phone, replies.PromptImage)
			return nil
		}
		return f.completeActivity(ctx, user, sess, image)

	default:
		// Unknown step for this intent: the state is corrupt, start over.
		sess.Clear()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.sendMenu(ctx, user.Phone)
	}
}

func (f *EmployeeFlow) completeActivity(ctx context.Context, user *domain.User, sess *domain.Session, image *domain.ImageRef) error {
	rec := &domain.ActivityLog{
		UserID:       user.ID,
		Phone:        user.Phone,
		SiteID:       sess.Activity.SiteID,
		ActivityType: sess.Activity.ActivityType,
		Hours:        sess.Activity.Hours,
		Description:  sess.Activity.Description,
		Image:        image,
		CreatedAt:    time.Now().UTC(),
	}
	res := Guard(ctx, f.timeout, func(ctx context.Context) (string, error) {
		return f.records.InsertActivity(ctx, rec)
	})
	if !res.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("activity_insert", res.Outcome.String()).Inc()
		f.log.Warn().Err(res.Err).Str("phone", user.Phone).Msg("activity insert degraded")
		// Session stays at upload_image so the user can retry.
		f.send(ctx, user.Phone, replies.EmployeeSaveFailed)
		return nil
	}

	sess.Clear()
	persistSession(ctx, f.sessions, f.timeout, sess, f.log)
	f.log.Info().Str("phone", user.Phone).Str("activity_id", res.Value).Msg("activity logged")
	f.send(ctx, user.Phone, replies.ActivitySaved(idExcerpt(res.Value)))
	return nil
}

// handleMaterial walks the fixed step order of the material-request flow.
func (f *EmployeeFlow) handleMaterial(ctx context.Context, user *domain.User, sess *domain.Session, msg ports.InboundMessage, text, lower string) error {
	switch sess.Step {
	case domain.StepSelectSite:
		siteID, ok := f.resolveSite(ctx, text, lower)
		if !ok {
			f.send(ctx, user.Phone, replies.InvalidSite)
			return nil
		}
		sess.Material.SiteID = siteID
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptMaterial)
		return nil

	case domain.StepEnterMaterial:
		if text == "" {
			f.send(ctx, user.Phone, replies.PromptMaterial)
			return nil
		}
		sess.Material.Material = text
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptQuantity)
		return nil

	case domain.StepEnterQuantity:
		qty, unit, ok := parseQuantity(text)
		if !ok {
			f.send(ctx, user.Phone, replies.InvalidQuantity)
			return nil
		}
		sess.Material.Quantity = qty
		sess.Material.Unit = unit
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		if err := f.messenger.SendButtons(ctx, user.Phone, replies.PromptUrgency, replies.UrgencyButtons()); err != nil {
			f.log.Warn().Err(err).Str("phone", user.Phone).Msg("urgency prompt failed")
		}
		return nil

	case domain.StepSelectUrgency:
		if !domain.ValidUrgency(domain.Urgency(lower)) {
			f.send(ctx, user.Phone, replies.InvalidUrgency)
			return nil
		}
		sess.Material.Urgency = lower
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptImage)
		return nil

	case domain.StepUploadImage:
		var image *domain.ImageRef
		if msg.HasImage() {
			ref, ok := f.uploadImage(ctx, msg, "materials")
			if !ok {
				f.send(ctx, user.Phone, replies.ImageUploadFailed)
				return nil
			}
			image = ref
		} else if !isSkip(lower) {
			f.send(ctx, user.Phone, replies.PromptImage)
			return nil
		}
		return f.completeMaterial(ctx, user, sess, image)

	default:
		sess.Clear()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.sendMenu(ctx, user.Phone)
	}
}

func (f *EmployeeFlow) completeMaterial(ctx context.Context, user *domain.User, sess *domain.Session, image *domain.ImageRef) error {
	rec := &domain.MaterialRequest{
		UserID:    user.ID,
		Phone:     user.Phone,
		SiteID:    sess.Material.SiteID,
		Material:  sess.Material.Material,
		Quantity:  sess.Material.Quantity,
		Unit:      sess.Material.Unit,
		Urgency:   domain.Urgency(sess.Material.Urgency),
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	res := Guard(ctx, f.timeout, func(ctx context.Context) (string, error) {
		return f.records.InsertMaterialRequest(ctx, rec)
	})
	if !res.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("material_insert", res.Outcome.String()).Inc()
		f.log.Warn().Err(res.Err).Str("phone", user.Phone).Msg("material insert degraded")
		f.send(ctx, user.Phone, replies.EmployeeSaveFailed)
		return nil
	}

	sess.Clear()
	persistSession(ctx, f.sessions, f.timeout, sess, f.log)
	f.log.Info().Str("phone", user.Phone).Str("request_id", res.Value).Msg("material request created")
	f.send(ctx, user.Phone, replies.MaterialSaved(idExcerpt(res.Value)))
	return nil
}

// showDashboard renders a best-effort summary of recent records. Either read
// degrading leaves its list empty; the summary is always sent.
func (f *EmployeeFlow) showDashboard(ctx context.Context, user *domain.User) error {
	actRes := Guard(ctx, f.timeout, func(ctx context.Context) ([]*domain.ActivityLog, error) {
		return f.records.RecentActivities(ctx, user.Phone, dashboardLimit)
	})
	if !actRes.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("dashboard_activities", actRes.Outcome.String()).Inc()
		f.log.Warn().Err(actRes.Err).Str("phone", user.Phone).Msg("dashboard activity read degraded")
	}
	matRes := Guard(ctx, f.timeout, func(ctx context.Context) ([]*domain.MaterialRequest, error) {
		return f.records.RecentMaterialRequests(ctx, user.Phone, dashboardLimit)
	})
	if !matRes.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("dashboard_materials", matRes.Outcome.String()).Inc()
		f.log.Warn().Err(matRes.Err).Str("phone", user.Phone).Msg("dashboard material read degraded")
	}

	total := 0
	for _, a := range actRes.Value {
		total += a.Hours
	}
	f.send(ctx, user.Phone, replies.Dashboard(actRes.Value, matRes.Value, total))
	return nil
}

// resolveSite validates the selection against the active site catalog. When
// the catalog is unreadable the input is accepted as an opaque site id so the
// flow can proceed in degraded mode.
func (f *EmployeeFlow) resolveSite(ctx context.Context, text, lower string) (string, bool) {
	if text == "" {
		return "", false
	}
	res := Guard(ctx, f.timeout, func(ctx context.Context) ([]*domain.Site, error) {
		return f.sites.ListActive(ctx)
	})
	if !res.OK() || len(res.Value) == 0 {
		return text, true
	}
	for _, s := range res.Value {
		if s.ID == text || strings.ToLower(s.Name) == lower {
			return s.ID, true
		}
	}
	return "", false
}

// promptSite shows the site picker, falling back to a free-text prompt when
// the catalog is unreadable or empty.
func (f *EmployeeFlow) promptSite(ctx context.Context, phone string) error {
	res := Guard(ctx, f.timeout, func(ctx context.Context) ([]*domain.Site, error) {
		return f.sites.ListActive(ctx)
	})
	if !res.OK() || len(res.Value) == 0 {
		f.send(ctx, phone, replies.PromptSiteFreeText)
		return nil
	}
	if err := f.messenger.SendList(ctx, phone, replies.PromptSelectSite, replies.EmployeeMenuButton, replies.SiteSections(res.Value)); err != nil {
		f.log.Warn().Err(err).Str("phone", phone).Msg("site prompt failed")
	}
	return nil
}

// uploadImage pulls the attachment from the platform media store and uploads
// it under the given namespace. Returns false when either leg fails; the user
// may retry or skip.
func (f *EmployeeFlow) uploadImage(ctx context.Context, msg ports.InboundMessage, namespace string) (*domain.ImageRef, bool) {
	data, mimeType, err := f.media.FetchMedia(ctx, msg.ImageID)
	if err != nil {
		f.log.Warn().Err(err).Str("media_id", msg.ImageID).Msg("media fetch failed")
		return nil, false
	}
	filename := msg.MessageID + extensionFor(mimeType)
	ref, err := f.images.Upload(ctx, data, filename, mimeType, namespace)
	if err != nil {
		f.log.Warn().Err(err).Str("media_id", msg.ImageID).Msg("image upload failed")
		return nil, false
	}
	return ref, true
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func (f *EmployeeFlow) sendMenu(ctx context.Context, phone string) error {
	if err := f.messenger.SendList(ctx, phone, replies.EmployeeMenuBody, replies.EmployeeMenuButton, replies.EmployeeMenuSections()); err != nil {
		f.log.Warn().Err(err).Str("phone", phone).Msg("menu send failed")
	}
	return nil
}

func (f *EmployeeFlow) send(ctx context.Context, to, body string) {
	if err := f.messenger.SendText(ctx, to, body); err != nil {
		f.log.Warn().Err(err).Str("phone", to).Msg("send failed")
	}
}

// parseQuantity splits "10 bags" into the leading integer and the free-text
// unit. Input without a leading positive integer is rejected.
func parseQuantity(s string) (int, string, bool) {
	m := quantityRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, strings.TrimSpace(m[2]), true
}
