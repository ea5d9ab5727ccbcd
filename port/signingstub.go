package port

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/arrowlane/hft-engine/types"
)

// SigningStub is an illustrative OrderPort: it builds and EIP-712-signs an
// order payload exactly as a real venue adapter would need to, but never
// sends it anywhere. Submit returns its ack at once and reports a full fill
// through the fill listener after a configurable simulated latency; Cancel
// returns nil at once. Grounded on the teacher's exec.Client
// buildSignedOrder/signOrderEIP712/buildDomainSeparator/buildOrderStructHash,
// generalised from Polymarket's CTF Exchange order shape to a generic
// domain name and from decimal prices to the core's int64 fixed point.
type SigningStub struct {
	domainName    string
	chainID       int64
	verifyingAddr string
	privateKey    *ecdsa.PrivateKey
	latency       time.Duration

	mu       sync.Mutex
	listener FillListener
	nonce    int64
}

// NewSigningStub creates a stub port. privateKeyHex may be empty, in which
// case a throwaway key is generated so signing still exercises the full
// EIP-712 path.
func NewSigningStub(domainName, verifyingAddr string, chainID int64, privateKeyHex string, latency time.Duration) (*SigningStub, error) {
	var key *ecdsa.PrivateKey
	var err error
	if privateKeyHex != "" {
		key, err = crypto.HexToECDSA(privateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("port: parse private key: %w", err)
		}
	} else {
		key, err = crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("port: generate key: %w", err)
		}
	}
	return &SigningStub{
		domainName:    domainName,
		chainID:       chainID,
		verifyingAddr: verifyingAddr,
		privateKey:    key,
		latency:       latency,
	}, nil
}

func (s *SigningStub) SetFillListener(l FillListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Submit signs the order and, after the simulated latency, reports a full
// fill at the order's limit price back through the fill listener.
func (s *SigningStub) Submit(ctx context.Context, order types.Order) (OrderAck, error) {
	sig, err := s.sign(order)
	if err != nil {
		return OrderAck{}, fmt.Errorf("port: sign order: %w", err)
	}

	go func() {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return
		}
		s.mu.Lock()
		l := s.listener
		s.mu.Unlock()
		if l == nil {
			return
		}
		l.OnFill(types.Trade{
			TradeID:       fmt.Sprintf("%s-fill", order.ClientOrderID),
			ClientOrderID: order.ClientOrderID,
			Symbol:        order.Symbol,
			Side:          order.Side,
			Price:         order.LimitPrice,
			Scale:         order.Scale,
			Quantity:      order.Quantity,
			StrategyID:    order.StrategyID,
			Timestamp:     time.Now(),
		})
	}()

	return OrderAck{ClientOrderID: order.ClientOrderID, ExchangeID: sig[:10], Accepted: true}, nil
}

// Cancel always succeeds in the stub; there is no live venue order to cancel.
func (s *SigningStub) Cancel(ctx context.Context, clientOrderID string) error {
	return nil
}

// sign builds the EIP-712 struct hash for the order and returns its hex
// signature, mirroring the teacher's signOrderEIP712 shape.
func (s *SigningStub) sign(order types.Order) (string, error) {
	domainSeparator := s.domainSeparator()
	orderHash := s.orderStructHash(order)

	data := append([]byte("\x19\x01"), domainSeparator[:]...)
	data = append(data, orderHash[:]...)
	finalHash := crypto.Keccak256(data)

	sig, err := crypto.Sign(finalHash, s.privateKey)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return fmt.Sprintf("0x%x", sig), nil
}

func (s *SigningStub) domainSeparator() [32]byte {
	domainTypeHash := crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	nameHash := crypto.Keccak256([]byte(s.domainName))
	versionHash := crypto.Keccak256([]byte("1"))

	chainIDBytes := common.LeftPadBytes(big.NewInt(s.chainID).Bytes(), 32)
	contractPadded := common.LeftPadBytes(common.HexToAddress(s.verifyingAddr).Bytes(), 32)

	var data []byte
	data = append(data, domainTypeHash...)
	data = append(data, nameHash...)
	data = append(data, versionHash...)
	data = append(data, chainIDBytes...)
	data = append(data, contractPadded...)

	var out [32]byte
	copy(out[:], crypto.Keccak256(data))
	return out
}

func (s *SigningStub) orderStructHash(order types.Order) [32]byte {
	typeHash := crypto.Keccak256([]byte("Order(uint256 nonce,uint256 tokenId,uint256 makerAmount,uint256 takerAmount,uint8 side)"))

	s.mu.Lock()
	s.nonce++
	nonce := s.nonce
	s.mu.Unlock()

	nonceBytes := common.LeftPadBytes(big.NewInt(nonce).Bytes(), 32)
	tokenID := common.LeftPadBytes([]byte(order.Symbol), 32)
	makerAmount := common.LeftPadBytes(big.NewInt(order.Quantity).Bytes(), 32)
	takerAmount := common.LeftPadBytes(big.NewInt(order.LimitPrice).Bytes(), 32)

	sideVal := byte(0)
	if order.Side == types.Sell {
		sideVal = 1
	}
	sidePadded := common.LeftPadBytes([]byte{sideVal}, 32)

	var data []byte
	data = append(data, typeHash...)
	data = append(data, nonceBytes...)
	data = append(data, tokenID[len(tokenID)-32:]...)
	data = append(data, makerAmount...)
	data = append(data, takerAmount...)
	data = append(data, sidePadded...)

	var out [32]byte
	copy(out[:], crypto.Keccak256(data))
	return out
}
