package identity

import (
	"pam-client-sol/internal/config"
	"pam-client-sol/pkg/logger"
)

// LoadPayer 按配置加载付款账户，generated 表示是否为本次运行新生成
func LoadPayer(cfg config.PayerConfig) (payer Identity, generated bool, err error) {
	switch {
	case cfg.KeypairFile != "":
		payer, err = FromKeypairFile(cfg.KeypairFile)
	case cfg.PrivateKey != "":
		payer, err = FromBase58(cfg.PrivateKey)
	case cfg.Mnemonic != "":
		payer, err = FromMnemonic(cfg.Mnemonic, cfg.Passphrase)
	default:
		payer, generated = Generate(), true
	}
	if err != nil {
		return Identity{}, false, err
	}
	logger.Infof("[Identity] payer=%s generated=%v", payer, generated)
	return payer, generated, nil
}
