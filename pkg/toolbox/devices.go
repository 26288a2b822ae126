package toolbox

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// WeatherInput selects a location and an optional unit for getWeather.
type WeatherInput struct {
	Location string `json:"location" jsonschema:"required,description=City and country to look up"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit,description=Temperature unit (default fahrenheit)"`
}

// WeatherResult echoes the location with a simulated temperature reading.
type WeatherResult struct {
	Temperature string `json:"temperature"`
	Location    string `json:"location"`
	Unit        string `json:"unit"`
}

func (tb *Toolbox) getWeather(in WeatherInput) (WeatherResult, error) {
	if in.Location == "" {
		return WeatherResult{}, errors.New("location is required")
	}
	unit := in.Unit
	if unit == "" {
		unit = "fahrenheit"
	}
	suffix := "F"
	if unit == "celsius" {
		suffix = "C"
	}
	// Simulated reading in the 10-49 range.
	deg := 10 + tb.randIntn(40)
	return WeatherResult{
		Temperature: fmt.Sprintf("%d° %s", deg, suffix),
		Location:    in.Location,
		Unit:        unit,
	}, nil
}

// TimeInput optionally selects an IANA timezone for getCurrentTime.
type TimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"description=IANA timezone name e.g. Asia/Tokyo"`
}

// TimeResult reports the current time in the selected timezone.
type TimeResult struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

func (tb *Toolbox) getCurrentTime(in TimeInput) (TimeResult, error) {
	loc := time.Local
	tz := "Local"
	if in.Timezone != "" {
		l, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return TimeResult{}, errors.Wrapf(err, "unknown timezone %q", in.Timezone)
		}
		loc = l
		tz = in.Timezone
	}
	return TimeResult{
		Time:     tb.now().In(loc).Format("2006-01-02 15:04:05"),
		Timezone: tz,
	}, nil
}

// FanInput sets the target speed and mode for controlFan.
type FanInput struct {
	Speed float64 `json:"speed" jsonschema:"required,description=Fan speed percentage from 0 to 100"`
	Mode  string  `json:"mode" jsonschema:"required,enum=low,enum=medium,enum=high,description=Fan operating mode"`
}

// FanResult confirms the applied fan state.
type FanResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (tb *Toolbox) controlFan(in FanInput) (FanResult, error) {
	switch in.Mode {
	case "low", "medium", "high":
	default:
		return FanResult{}, errors.Errorf("invalid fan mode %q", in.Mode)
	}
	if in.Speed < 0 || in.Speed > 100 {
		return FanResult{}, errors.Errorf("fan speed %v out of range 0-100", in.Speed)
	}
	speed := strconv.FormatFloat(in.Speed, 'f', -1, 64)
	return FanResult{
		Status:  "success",
		Message: fmt.Sprintf("Fan set to %s%% speed in %s mode.", speed, in.Mode),
	}, nil
}
