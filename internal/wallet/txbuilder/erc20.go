package txbuilder

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	paddedAddressLength = 32

	// TransferDataLength is selector + address word + amount word
	TransferDataLength = 4 + 2*32
)

var (
	TransferSelector  = common.FromHex("a9059cbb")
	BalanceOfSelector = common.FromHex("70a08231")

	// Transfer(address,address,uint256)
	TransferEventTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

	transferArgs = mustTransferArgs()
)

func mustTransferArgs() abi.Arguments {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uintType, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}

	return abi.Arguments{{Type: addressType}, {Type: uintType}}
}

// EncodeTransfer returns the calldata of transfer(to, amount).
func EncodeTransfer(to common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, TransferDataLength)
	data = append(data, TransferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), paddedAddressLength)...)
	data = append(data, common.BigToHash(amount).Bytes()...)

	return data
}

// IsTransfer reports whether data starts with a complete transfer(address,uint256) call.
func IsTransfer(data []byte) bool {
	return len(data) >= TransferDataLength && bytes.Equal(data[:4], TransferSelector)
}

// DecodeTransfer parses transfer calldata. Bytes after the two arguments are returned as rest.
func DecodeTransfer(data []byte) (common.Address, *big.Int, []byte, error) {
	if !IsTransfer(data) {
		return common.Address{}, nil, nil, errors.New("not an ERC20 transfer call")
	}

	values, err := transferArgs.Unpack(data[4:TransferDataLength])
	if err != nil {
		return common.Address{}, nil, nil, errors.Wrap(err, "failed to unpack transfer arguments")
	}

	to, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, nil, errors.New("unexpected transfer recipient type")
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, nil, errors.New("unexpected transfer amount type")
	}

	return to, amount, data[TransferDataLength:], nil
}

// EncodeBalanceOf returns the calldata of balanceOf(owner).
func EncodeBalanceOf(owner common.Address) []byte {
	data := make([]byte, 0, 4+paddedAddressLength) //nolint:mnd
	data = append(data, BalanceOfSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), paddedAddressLength)...)

	return data
}

// DecodeUint256 parses a single uint256 return value.
func DecodeUint256(data []byte) (*big.Int, error) {
	if len(data) != common.HashLength {
		return nil, errors.Errorf("uint256 result has %d bytes, want %d", len(data), common.HashLength)
	}

	return new(big.Int).SetBytes(data), nil
}
