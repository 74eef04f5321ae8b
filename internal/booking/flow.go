package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/pkg/checkout"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// Step indexes the client booking flow.
type Step int

const (
	StepProfessional Step = 1
	StepSchedule     Step = 2
	StepProductFork  Step = 3
	StepProducts     Step = 4
	StepIdentity     Step = 5
	StepConfirmed    Step = 6
)

// AnyProfessionalName is shown when the client lets the salon pick.
const AnyProfessionalName = "Any professional"

// ServiceSnapshot freezes the booked service at flow entry.
type ServiceSnapshot struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ProfessionalSnapshot freezes the chosen professional.
type ProfessionalSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// Draft is the uncommitted state of one booking. All transitions are pure;
// the service loads and stores drafts around them.
type Draft struct {
	ID             string                `json:"id"`
	Tenant         string                `json:"tenant"`
	Step           Step                  `json:"step"`
	Service        ServiceSnapshot       `json:"service"`
	Professional   *ProfessionalSnapshot `json:"professional,omitempty"`
	Date           string                `json:"date"`
	Time           string                `json:"time"`
	ViewedProducts bool                  `json:"viewed_products"`
	Cart           []checkout.Line       `json:"cart"`
	Phone          string                `json:"phone"`
	Name           string                `json:"name"`
	BirthDate      string                `json:"birth_date"`
	ExistingClient bool                  `json:"existing_client"`
	Autofilled     bool                  `json:"autofilled"`
	AppointmentID  string                `json:"appointment_id,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// NewDraft starts a flow for the given service with the date set to today.
func NewDraft(id, tenant string, svc models.Service, today string, now time.Time) *Draft {
	return &Draft{
		ID:        id,
		Tenant:    tenant,
		Step:      StepProfessional,
		Service:   ServiceSnapshot{ID: svc.ID, Name: svc.Name, Price: svc.Price},
		Date:      today,
		Cart:      []checkout.Line{},
		CreatedAt: now.UTC(),
	}
}

func (d *Draft) require(steps ...Step) error {
	for _, s := range steps {
		if d.Step == s {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("action not available at step %d", d.Step))
}

// SelectProfessional records the employee, or the "any" pseudo-employee when
// employee is nil, and moves to scheduling.
func (d *Draft) SelectProfessional(employee *models.Employee) error {
	if err := d.require(StepProfessional); err != nil {
		return err
	}
	if employee == nil {
		d.Professional = &ProfessionalSnapshot{ID: models.AnyProfessionalID, Name: AnyProfessionalName}
	} else {
		d.Professional = &ProfessionalSnapshot{ID: employee.ID, Name: employee.Name, Photo: employee.PhotoURL}
	}
	d.Step = StepSchedule
	return nil
}

// Schedule sets date and/or time. Empty values leave the current value alone.
// The time must be one of slots.
func (d *Draft) Schedule(date, at string, slots []string, today string) error {
	if err := d.require(StepSchedule); err != nil {
		return err
	}
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
		}
		if today != "" && date < today {
			return pkgerrors.New(pkgerrors.CodeValidation, "date must not be in the past")
		}
	}
	if at != "" && !contains(slots, at) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("time %q is not an available slot", at))
	}
	if date != "" {
		d.Date = date
	}
	if at != "" {
		d.Time = at
	}
	return nil
}

// Continue advances from scheduling once date and time are set, and from
// product selection regardless of the cart.
func (d *Draft) Continue() error {
	switch d.Step {
	case StepSchedule:
		if d.Date == "" || d.Time == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "date and time are required")
		}
		d.Step = StepProductFork
	case StepProducts:
		d.Step = StepIdentity
	default:
		return d.require(StepSchedule, StepProducts)
	}
	return nil
}

func (d *Draft) ViewProducts() error {
	if err := d.require(StepProductFork); err != nil {
		return err
	}
	d.ViewedProducts = true
	d.Step = StepProducts
	return nil
}

func (d *Draft) SkipProducts() error {
	if err := d.require(StepProductFork); err != nil {
		return err
	}
	d.ViewedProducts = false
	d.Step = StepIdentity
	return nil
}

// Increment adds one unit of productID to the cart.
func (d *Draft) Increment(productID string) error {
	if err := d.require(StepProducts); err != nil {
		return err
	}
	for i := range d.Cart {
		if d.Cart[i].ProductID == productID {
			d.Cart[i].Quantity++
			return nil
		}
	}
	d.Cart = append(d.Cart, checkout.Line{ProductID: productID, Quantity: 1})
	return nil
}

// Decrement removes one unit; the line disappears with its last unit.
func (d *Draft) Decrement(productID string) error {
	if err := d.require(StepProducts); err != nil {
		return err
	}
	for i := range d.Cart {
		if d.Cart[i].ProductID != productID {
			continue
		}
		d.Cart[i].Quantity--
		if d.Cart[i].Quantity <= 0 {
			d.Cart = append(d.Cart[:i], d.Cart[i+1:]...)
		}
		return nil
	}
	return nil
}

// Quantity returns the cart quantity for productID.
func (d *Draft) Quantity(productID string) int {
	for _, line := range d.Cart {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// SetPhone re-resolves identity against match, the client found for the new
// phone (nil when none). A match autofills name and birth date; losing a
// match clears values that came from the previous one.
func (d *Draft) SetPhone(phone string, match *models.Client) error {
	if err := d.require(StepIdentity); err != nil {
		return err
	}
	d.Phone = clients.NormalizePhone(phone)
	if match != nil {
		d.ExistingClient = true
		d.Autofilled = true
		d.Name = match.Name
		d.BirthDate = match.BirthDate
		return nil
	}
	if d.Autofilled {
		d.Name = ""
		d.BirthDate = ""
	}
	d.ExistingClient = false
	d.Autofilled = false
	return nil
}

// SetName is only editable while the phone is unknown.
func (d *Draft) SetName(name string) error {
	if err := d.require(StepIdentity); err != nil {
		return err
	}
	if d.ExistingClient {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "name comes from the existing client")
	}
	d.Name = strings.TrimSpace(name)
	return nil
}

// SetBirthDate is only editable while the phone is unknown.
func (d *Draft) SetBirthDate(value string, now time.Time) error {
	if err := d.require(StepIdentity); err != nil {
		return err
	}
	if d.ExistingClient {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "birth date comes from the existing client")
	}
	if !clients.ValidBirthDate(value, now) {
		return pkgerrors.New(pkgerrors.CodeValidation, "birth date must be YYYY-MM-DD and not in the future")
	}
	d.BirthDate = value
	return nil
}

// Back returns to the previous step. From identity it goes to product
// selection only when products were viewed.
func (d *Draft) Back() error {
	switch d.Step {
	case StepSchedule:
		d.Step = StepProfessional
	case StepProductFork:
		d.Step = StepSchedule
	case StepProducts:
		d.Step = StepProductFork
	case StepIdentity:
		if d.ViewedProducts {
			d.Step = StepProducts
		} else {
			d.Step = StepProductFork
		}
	default:
		return d.require(StepSchedule, StepProductFork, StepProducts, StepIdentity)
	}
	return nil
}

// ValidateForConfirm checks every field required to commit the booking.
func (d *Draft) ValidateForConfirm() error {
	if err := d.require(StepIdentity); err != nil {
		return err
	}
	missing := []string{}
	if d.Professional == nil {
		missing = append(missing, "professional")
	}
	if d.Date == "" {
		missing = append(missing, "date")
	}
	if d.Time == "" {
		missing = append(missing, "time")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if !d.ExistingClient {
		if d.Name == "" {
			missing = append(missing, "name")
		}
		if d.BirthDate == "" {
			missing = append(missing, "birth_date")
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "missing booking fields").WithDetails(map[string]any{
		"missing": missing,
	})
}

// BuildAppointment assembles the scheduled appointment from the draft and the
// expanded product snapshots.
func (d *Draft) BuildAppointment(id string, products []models.Product) models.Appointment {
	appt := models.Appointment{
		ID:          id,
		ServiceID:   d.Service.ID,
		ServiceName: d.Service.Name,
		ClientID:    d.Phone,
		ClientName:  d.Name,
		Date:        d.Date,
		Time:        d.Time,
		Price:       d.Service.Price,
		Products:    products,
	}
	if d.Professional != nil {
		appt.EmployeeID = d.Professional.ID
		appt.EmployeeName = d.Professional.Name
		appt.EmployeePhoto = d.Professional.Photo
	}
	appt.RecomputeTotal()
	return appt
}

// MarkConfirmed moves the draft to the terminal step.
func (d *Draft) MarkConfirmed(appointmentID string) {
	d.AppointmentID = appointmentID
	d.Step = StepConfirmed
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
