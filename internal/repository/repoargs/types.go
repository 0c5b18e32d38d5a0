package repoargs

type RepositoryName string

const (
	UserRepoName           RepositoryName = "user"
	ShopRepoName           RepositoryName = "shop"
	ListingRepoName        RepositoryName = "listing"
	OrderRepoName          RepositoryName = "order"
	FeeTransactionRepoName RepositoryName = "fee_transaction"
	CreditEntryRepoName    RepositoryName = "credit_entry"
	DisputeRepoName        RepositoryName = "dispute"
)
