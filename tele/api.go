package tele

import (
	"fmt"
)

var (
	ErrDisabled = fmt.Errorf("tele disabled")
	ErrTimeout  = fmt.Errorf("tele timeout")
)

type State uint8

const (
	State_Invalid State = iota
	State_Boot
	State_Nominal
	State_Problem
	State_Offline
	State_Client
)

var State_name = map[State]string{
	State_Invalid: "Invalid",
	State_Boot:    "Boot",
	State_Nominal: "Nominal",
	State_Problem: "Problem",
	State_Offline: "Offline",
	State_Client:  "Client",
}

func (s State) String() string {
	if name, ok := State_name[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", s)
}

// Transaction is one withdrawal, balance is after subtraction.
type Transaction struct {
	Amount  int    `json:"amount"`
	Balance int    `json:"balance"`
	CardId  string `json:"card_id,omitempty"`
	Time    int64  `json:"time"`
}

type Telemetry struct {
	ClientId     string          `json:"client_id"`
	Time         int64           `json:"time"`
	BuildVersion string          `json:"build_version,omitempty"`
	Error        *Telemetry_Error `json:"error,omitempty"`
	Transaction  *Transaction    `json:"transaction,omitempty"`
	Stat         *Telemetry_Stat `json:"stat,omitempty"`
}

type Telemetry_Error struct {
	Message string `json:"message"`
}

type Telemetry_Stat struct {
	Transactions   uint32 `json:"transactions"`
	InputErrors    uint32 `json:"input_errors"`
	HardwareErrors uint32 `json:"hardware_errors"`
	VerifyApproved uint32 `json:"verify_approved"`
	VerifyDenied   uint32 `json:"verify_denied"`
	VerifyOffline  uint32 `json:"verify_offline"`
}

type VerifyRequest struct {
	Id        uint32 `json:"id"`
	Pin       string `json:"pin"`
	Biometric string `json:"biometric"`
}

type VerifyResponse struct {
	Id       uint32 `json:"id"`
	Approved bool   `json:"approved"`
	Error    string `json:"error,omitempty"`
}
