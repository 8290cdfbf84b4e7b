// Command storefront drives a shopper session against the storefront API.
// Guest state lives in a local directory, or in redis under -guest-id;
// passing -email logs in and reconciles the guest state with the server
// according to -policy.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/attire-backend/api/validators"
	"github.com/angelmondragon/attire-backend/internal/pricing"
	"github.com/angelmondragon/attire-backend/internal/storefront"
	"github.com/angelmondragon/attire-backend/pkg/config"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/redis"
	"github.com/angelmondragon/attire-backend/pkg/types"
)

const usage = `usage: storefront [flags] <command> [args]

commands:
  products [category]                 list the catalog
  cart                                show cart lines and the quote
  add <productId> [size] [color]      add one unit
  qty <productId> <size> <color> <n>  change quantity by n
  remove <productId> <size> <color>   drop a line
  clear                               empty the cart
  wishlist                            show the wishlist
  toggle <productId>                  add or remove a wishlist entry
  quote [coupon]                      price the cart, optionally with a coupon
  order [coupon]                      place an order (requires -email and -address)
`

type cliConfig struct {
	APIURL   string `envconfig:"ATTIRE_API_URL" default:"http://localhost:8080"`
	GuestDir string `envconfig:"ATTIRE_GUEST_DIR" default:".attire"`
	GuestID  string `envconfig:"ATTIRE_GUEST_ID"`
	LogLevel string `envconfig:"ATTIRE_LOG_LEVEL" default:"warn"`
	Checkout config.CheckoutConfig
	Redis    config.RedisConfig
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	var cfg cliConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		return fail("parsing config: %v", err)
	}

	apiURL := flag.String("api", cfg.APIURL, "storefront API base url")
	guestDir := flag.String("dir", cfg.GuestDir, "guest state directory")
	guestID := flag.String("guest-id", cfg.GuestID, "keep guest state in redis under this id instead of -dir")
	email := flag.String("email", "", "log in as this user")
	password := flag.String("password", os.Getenv("ATTIRE_PASSWORD"), "password for -email")
	policyName := flag.String("policy", "replace", "guest reconcile policy on login: replace|merge")
	addressPath := flag.String("address", "", "JSON shipping address file for order")
	payment := flag.String("payment", string(enums.PaymentMethodCOD), "payment method for order: cod|card|upi")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	policy, err := parsePolicy(*policyName)
	if err != nil {
		return fail("%v", err)
	}

	client, err := storefront.NewAPIClient(*apiURL, "", nil)
	if err != nil {
		return fail("%v", err)
	}

	var blob storefront.BlobStore
	if *guestID != "" {
		rdb, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fail("connect redis: %v", err)
		}
		defer rdb.Close()
		blob, err = storefront.NewRedisBlob(rdb, *guestID, cfg.Redis.GuestCartTTL)
		if err != nil {
			return fail("%v", err)
		}
	} else {
		blob, err = storefront.NewFileBlob(*guestDir)
		if err != nil {
			return fail("%v", err)
		}
	}

	sess, err := storefront.NewGuestSession(ctx, blob, storefront.Options{
		Logger: logg,
		Rules:  pricing.RulesFromConfig(cfg.Checkout),
	})
	if err != nil {
		return fail("open guest session: %v", err)
	}
	defer sess.Close()

	if *email != "" {
		if _, err := client.Login(ctx, *email, *password); err != nil {
			return fail("login: %v", err)
		}
		if err := sess.Authenticate(ctx, client, policy); err != nil {
			return fail("authenticate: %v", err)
		}
	}

	c := command{sess: sess, client: client, addressPath: *addressPath, payment: *payment}
	if err := c.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		return fail("%s: %v", flag.Arg(0), err)
	}
	return 0
}

type command struct {
	sess        *storefront.Session
	client      *storefront.APIClient
	addressPath string
	payment     string
}

func (c command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "products":
		query := map[string][]string{}
		if len(args) > 0 {
			query["category"] = []string{args[0]}
		}
		products, err := c.client.ListProducts(ctx, query)
		if err != nil {
			return err
		}
		return printJSON(products)

	case "cart":
		return printJSON(map[string]any{
			"mode":  c.sess.Mode(),
			"lines": c.sess.Cart().Lines(),
			"quote": c.sess.Checkout().Quote(),
		})

	case "add":
		if len(args) < 1 {
			return fmt.Errorf("missing productId")
		}
		product, err := c.product(ctx, args[0])
		if err != nil {
			return err
		}
		if err := c.sess.Cart().AddToCart(ctx, *product, argAt(args, 1), argAt(args, 2)); err != nil {
			return err
		}
		return printJSON(c.sess.Cart().Lines())

	case "qty":
		if len(args) < 4 {
			return fmt.Errorf("usage: qty <productId> <size> <color> <n>")
		}
		key, err := lineKey(args)
		if err != nil {
			return err
		}
		delta, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid quantity change %q", args[3])
		}
		if err := c.sess.Cart().UpdateQuantity(ctx, key, delta); err != nil {
			return err
		}
		return printJSON(c.sess.Cart().Lines())

	case "remove":
		if len(args) < 3 {
			return fmt.Errorf("usage: remove <productId> <size> <color>")
		}
		key, err := lineKey(args)
		if err != nil {
			return err
		}
		if err := c.sess.Cart().RemoveFromCart(ctx, key); err != nil {
			return err
		}
		return printJSON(c.sess.Cart().Lines())

	case "clear":
		return c.sess.Cart().ClearCart(ctx)

	case "wishlist":
		items := c.sess.Wishlist().Items()
		hasNew := c.sess.Wishlist().HasNewItems()
		if err := c.sess.Wishlist().MarkSeen(ctx); err != nil {
			return err
		}
		return printJSON(map[string]any{"items": items, "hasNew": hasNew})

	case "toggle":
		if len(args) < 1 {
			return fmt.Errorf("missing productId")
		}
		product, err := c.product(ctx, args[0])
		if err != nil {
			return err
		}
		if err := c.sess.Wishlist().Toggle(ctx, *product); err != nil {
			return err
		}
		return printJSON(map[string]bool{"wishlisted": c.sess.Wishlist().IsWishlisted(product.ID)})

	case "quote":
		if err := c.applyCoupon(args); err != nil {
			return err
		}
		return printJSON(c.sess.Checkout().Quote())

	case "order":
		if err := c.applyCoupon(args); err != nil {
			return err
		}
		address, err := readAddress(c.addressPath)
		if err != nil {
			return err
		}
		method, err := enums.ParsePaymentMethod(c.payment)
		if err != nil {
			return err
		}
		order, err := c.sess.Checkout().PlaceOrder(ctx, *address, method)
		if err != nil {
			return err
		}
		return printJSON(order)
	}
	return fmt.Errorf("unknown command")
}

func (c command) product(ctx context.Context, raw string) (*types.Product, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q", raw)
	}
	return c.client.GetProduct(ctx, id)
}

func (c command) applyCoupon(args []string) error {
	if len(args) == 0 {
		return nil
	}
	return c.sess.Checkout().ApplyCoupon(args[0])
}

func parsePolicy(name string) (storefront.ReconcilePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "replace":
		return storefront.ReplaceWithServer, nil
	case "merge":
		return storefront.MergeGuestIntoServer, nil
	}
	return 0, fmt.Errorf("unknown reconcile policy %q", name)
}

func lineKey(args []string) (types.LineKey, error) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return types.LineKey{}, fmt.Errorf("invalid product id %q", args[0])
	}
	return types.LineKey{ProductID: id, Size: args[1], Color: args[2]}, nil
}

func readAddress(path string) (*types.ShippingAddress, error) {
	if path == "" {
		return nil, fmt.Errorf("-address is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read address: %w", err)
	}
	var address types.ShippingAddress
	if err := json.Unmarshal(raw, &address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if err := validators.Struct(&address); err != nil {
		return nil, err
	}
	return &address, nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return 1
}
