package entity

// Cluster is a selectable Solana network (devnet, testnet, mainnet-beta).
// It is defined at the domain level so both the application layer and the
// infrastructure layer can refer to the active selection.
type Cluster struct {
	Identifier string `json:"identifier" yaml:"identifier"` // "devnet", "testnet", "mainnet-beta"
	Label      string `json:"label" yaml:"label"`
	RPCURL     string `json:"rpcUrl" yaml:"rpcUrl"`
	// ChainID follows the token list convention: 101 mainnet, 102 testnet, 103 devnet.
	ChainID int `json:"chainId" yaml:"chainId"`
}

// Account is the connected wallet. The address is an opaque base58 string
// supplied by the wallet collaborator; the service only reads it.
type Account struct {
	Address string `json:"address"`
}
