package hashes

const (
	blockDomain         = "BlockHash"
	transactionIDDomain = "TransactionID"
	merkleBranchDomain  = "MerkleBranchHash"
	receiptDomain       = "ReceiptHash"
	proofOfWorkDomain   = "ProofOfWorkHash"
	bloomDomain         = "LogsBloomHash"
)
