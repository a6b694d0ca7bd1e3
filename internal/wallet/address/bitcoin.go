package address

import (
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

func bitcoinAddress(pub []byte, o *options) (string, error) {
	key, err := parseSecp256k1(pub)
	if err != nil {
		return "", err
	}

	switch o.bitcoinFormat {
	case BitcoinP2PKH:
		addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(key.SerializeCompressed()), o.bitcoinParams)
		if err != nil {
			return "", errors.Wrap(err, "failed to create p2pkh address")
		}
		return addr.EncodeAddress(), nil
	case BitcoinP2TR:
		// BIP-86 key path only output key
		outputKey := txscript.ComputeTaprootKeyNoScript(key)
		addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), o.bitcoinParams)
		if err != nil {
			return "", errors.Wrap(err, "failed to create p2tr address")
		}
		return addr.EncodeAddress(), nil
	default:
		return "", errors.Errorf("unsupported bitcoin format %q", o.bitcoinFormat)
	}
}

func validateBitcoin(addr string, o *options) error {
	decoded, err := btcutil.DecodeAddress(addr, o.bitcoinParams)
	if err != nil || !decoded.IsForNet(o.bitcoinParams) {
		return errors.Wrapf(ErrInvalidAddress, "bitcoin address %q", addr)
	}

	return nil
}
