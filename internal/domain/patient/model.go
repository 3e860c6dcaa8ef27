package patient

import (
	"fmt"
	"strings"

	"github.com/medicore/medicore/internal/types"
)

// Patient is the minimal patient record the billing engine needs: enough to
// validate that a bill targets a real patient in the caller's tenant and to
// enrich responses with a display name. The full patient record lives in the
// record store outside this service.
type Patient struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PatientCode string `json:"patient_code"`

	types.BaseModel
}

// FullName returns the display name used on bills
func (p *Patient) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", p.FirstName, p.LastName))
}
