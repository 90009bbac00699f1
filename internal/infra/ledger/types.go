package ledger

import "encoding/json"

// apiResponse is the node's response envelope. Code "0" is success;
// anything else is a business rejection with a human-readable msg.
type apiResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

const codeOK = "0"

// txRecord is one transaction as returned by the transfers query.
// Amount is an integer string in the ledger's base unit.
type txRecord struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Asset     string `json:"asset"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"` // Unix seconds
}

// sweepRequest asks the node to move the full balance of the address
// controlled by the attached key to Destination. The node verifies
// the signature over destination|timestamp before broadcasting.
type sweepRequest struct {
	Address     string `json:"address"`
	Destination string `json:"destination"`
	PublicKey   string `json:"publicKey"`
	Timestamp   int64  `json:"timestamp"`
	Signature   string `json:"signature"`
}

// sweepResponse carries the broadcast transaction hash.
type sweepResponse struct {
	Hash string `json:"hash"`
}
